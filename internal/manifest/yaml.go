package manifest

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

const (
	yamlIndentConstant    = 2
	yamlStringTagConstant = "!!str"
)

type yamlManifestFields struct {
	Name    string  `yaml:"name"`
	Version *string `yaml:"version"`
	Private bool    `yaml:"private"`
}

func decodeYAMLFields(content []byte) (manifestFields, error) {
	var document yamlManifestFields
	if unmarshalError := yaml.Unmarshal(content, &document); unmarshalError != nil {
		return manifestFields{}, unmarshalError
	}
	if document.Version == nil {
		return manifestFields{}, errMissingVersion
	}
	return manifestFields{name: document.Name, version: *document.Version, private: document.Private}, nil
}

func rewriteYAMLVersion(content []byte, version string) ([]byte, error) {
	var document yaml.Node
	if unmarshalError := yaml.Unmarshal(content, &document); unmarshalError != nil {
		return nil, unmarshalError
	}
	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 || document.Content[0].Kind != yaml.MappingNode {
		return nil, errNotAnObject
	}

	mapping := document.Content[0]
	versionFound := false
	for keyIndex := 0; keyIndex+1 < len(mapping.Content); keyIndex += 2 {
		if mapping.Content[keyIndex].Value != versionKeyConstant {
			continue
		}
		valueNode := mapping.Content[keyIndex+1]
		if valueNode.Kind != yaml.ScalarNode {
			return nil, errVersionNotString
		}
		valueNode.Value = version
		valueNode.Tag = yamlStringTagConstant
		versionFound = true
	}
	if !versionFound {
		return nil, errMissingVersion
	}

	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(&document); encodeError != nil {
		return nil, encodeError
	}
	if closeError := encoder.Close(); closeError != nil {
		return nil, closeError
	}
	return buffer.Bytes(), nil
}
