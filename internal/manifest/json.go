package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

const jsonIndentConstant = "  "

func decodeJSONFields(content []byte) (manifestFields, error) {
	var document map[string]json.RawMessage
	if unmarshalError := json.Unmarshal(content, &document); unmarshalError != nil {
		return manifestFields{}, unmarshalError
	}
	if document == nil {
		return manifestFields{}, errNotAnObject
	}

	fields := manifestFields{}

	rawVersion, versionPresent := document[versionKeyConstant]
	if !versionPresent {
		return manifestFields{}, errMissingVersion
	}
	if unmarshalError := json.Unmarshal(rawVersion, &fields.version); unmarshalError != nil {
		return manifestFields{}, errVersionNotString
	}

	if rawName, namePresent := document[nameKeyConstant]; namePresent {
		if unmarshalError := json.Unmarshal(rawName, &fields.name); unmarshalError != nil {
			return manifestFields{}, errNameNotString
		}
	}

	if rawPrivate, privatePresent := document[privateKeyConstant]; privatePresent {
		if unmarshalError := json.Unmarshal(rawPrivate, &fields.private); unmarshalError != nil {
			return manifestFields{}, errPrivateNotBoolean
		}
	}

	return fields, nil
}

// rewriteJSONVersion replaces the top-level version value while keeping member order.
func rewriteJSONVersion(content []byte, version string) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))

	openingToken, tokenError := decoder.Token()
	if tokenError != nil {
		return nil, tokenError
	}
	if delimiter, isDelimiter := openingToken.(json.Delim); !isDelimiter || delimiter != '{' {
		return nil, errNotAnObject
	}

	encodedVersion, encodeError := encodeJSONString(version)
	if encodeError != nil {
		return nil, encodeError
	}

	var compact bytes.Buffer
	compact.WriteByte('{')
	versionFound := false
	for memberIndex := 0; decoder.More(); memberIndex++ {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return nil, keyError
		}
		key, _ := keyToken.(string)

		var value json.RawMessage
		if decodeError := decoder.Decode(&value); decodeError != nil {
			return nil, decodeError
		}

		if key == versionKeyConstant {
			var previousVersion string
			if unmarshalError := json.Unmarshal(value, &previousVersion); unmarshalError != nil {
				return nil, errVersionNotString
			}
			value = encodedVersion
			versionFound = true
		}

		encodedKey, keyEncodeError := encodeJSONString(key)
		if keyEncodeError != nil {
			return nil, keyEncodeError
		}
		if memberIndex > 0 {
			compact.WriteByte(',')
		}
		compact.Write(encodedKey)
		compact.WriteByte(':')
		compact.Write(value)
	}

	if _, closingError := decoder.Token(); closingError != nil {
		return nil, closingError
	}
	if _, trailingError := decoder.Token(); !errors.Is(trailingError, io.EOF) {
		return nil, errNotAnObject
	}
	compact.WriteByte('}')

	if !versionFound {
		return nil, errMissingVersion
	}

	var indented bytes.Buffer
	if indentError := json.Indent(&indented, compact.Bytes(), "", jsonIndentConstant); indentError != nil {
		return nil, indentError
	}
	indented.WriteByte('\n')
	return indented.Bytes(), nil
}

func encodeJSONString(value string) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}
