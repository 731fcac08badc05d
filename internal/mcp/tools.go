package mcp

import (
	"encoding/json"

	"github.com/cloudwego/eino/schema"
)

// EinoToolInfos converts MCP tools to the descriptions eino chat models bind.
func EinoToolInfos(tools []Tool) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		infos = append(infos, &schema.ToolInfo{
			Name:        t.Name,
			Desc:        t.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(parseInputSchemaToParams(t.InputSchema)),
		})
	}
	return infos
}

type jsonSchemaProperty struct {
	Type        string                        `json:"type"`
	Description string                        `json:"description"`
	Enum        []string                      `json:"enum"`
	Items       *jsonSchemaProperty           `json:"items"`
	Properties  map[string]jsonSchemaProperty `json:"properties"`
	Required    []string                      `json:"required"`
}

// parseInputSchemaToParams converts JSON Schema to Eino ParameterInfo.
func parseInputSchemaToParams(schemaJSON json.RawMessage) map[string]*schema.ParameterInfo {
	var root jsonSchemaProperty
	if err := json.Unmarshal(schemaJSON, &root); err != nil {
		return nil
	}
	return toParams(root.Properties, root.Required)
}

func toParams(props map[string]jsonSchemaProperty, required []string) map[string]*schema.ParameterInfo {
	if len(props) == 0 {
		return nil
	}

	requiredSet := make(map[string]bool, len(required))
	for _, r := range required {
		requiredSet[r] = true
	}

	params := make(map[string]*schema.ParameterInfo, len(props))
	for name, prop := range props {
		info := toParam(prop)
		info.Required = requiredSet[name]
		params[name] = info
	}
	return params
}

func toParam(prop jsonSchemaProperty) *schema.ParameterInfo {
	info := &schema.ParameterInfo{
		Type: dataType(prop.Type),
		Desc: prop.Description,
		Enum: prop.Enum,
	}
	switch info.Type {
	case schema.Array:
		if prop.Items != nil {
			info.ElemInfo = toParam(*prop.Items)
		}
	case schema.Object:
		info.SubParams = toParams(prop.Properties, prop.Required)
	}
	return info
}

func dataType(t string) schema.DataType {
	switch t {
	case "integer":
		return schema.Integer
	case "number":
		return schema.Number
	case "boolean":
		return schema.Boolean
	case "array":
		return schema.Array
	case "object":
		return schema.Object
	default:
		return schema.String
	}
}
