package mapping

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tradebook/internal/logger"
	"tradebook/internal/trade"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

//go:embed tables/default.yaml
var defaultTablesYAML []byte

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func tableSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("schema.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("schema.json")
	})
	return schemaCompiled, schemaErr
}

// Default 返回内置映射表。
func Default() (*Tables, error) {
	return Parse(defaultTablesYAML)
}

// Load 读取 YAML 映射文件；path 为空时使用内置表。
func Load(path string) (*Tables, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &trade.IOError{Op: "read mapping tables", Destination: path, Err: err}
	}
	tables, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("mapping tables %s: %w", filepath.Base(path), err)
	}
	logger.Infof("mapping tables loaded from %s: global=%d instruments=%d", filepath.Base(path), tables.global.Len(), len(tables.instruments))
	return tables, nil
}

// Parse 校验并解析映射 YAML，保留文件中的键顺序。
func Parse(raw []byte) (*Tables, error) {
	if err := validateDocument(raw); err != nil {
		return nil, err
	}
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&root); err != nil {
		return nil, fmt.Errorf("parse mapping tables failed: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("mapping tables document is empty")
	}
	doc := root.Content[0]
	global := NewTable()
	instruments := make(map[trade.Instrument]Table)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i].Value, doc.Content[i+1]
		switch key {
		case "global":
			global = tableFromNode(val)
		case "instruments":
			for j := 0; j+1 < len(val.Content); j += 2 {
				inst, ok := trade.ParseInstrument(val.Content[j].Value)
				if !ok {
					return nil, &trade.UnsupportedInstrumentError{Value: val.Content[j].Value}
				}
				instruments[inst] = tableFromNode(val.Content[j+1])
			}
		}
	}
	return NewTables(global, instruments), nil
}

func tableFromNode(node *yaml.Node) Table {
	entries := make([]Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		entries = append(entries, Entry{From: node.Content[i].Value, To: node.Content[i+1].Value})
	}
	return NewTable(entries...)
}

func validateDocument(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse mapping tables failed: %w", err)
	}
	// round-trip through JSON so the validator sees json-shaped values
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("mapping tables are not json-compatible: %w", err)
	}
	var generic any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return err
	}
	schema, err := tableSchema()
	if err != nil {
		return fmt.Errorf("compile mapping schema failed: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return fmt.Errorf("mapping tables invalid: %w", err)
	}
	return nil
}
