package tools

import (
	"encoding/json"
	"testing"

	invopop "github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"

	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/types"
)

func TestCheckOutputSchema_BuiltinOutputs(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckOutputSchema[types.ResultOutput]("result")
		CheckOutputSchema[types.DocsOutput]("docs")
		CheckOutputSchema[types.InfoOutput]("info")
		CheckOutputSchema[types.DownloadOutput]("download")
		CheckOutputSchema[types.StorageQueryOutput]("storage_query")
		CheckOutputSchema[types.StorageInspectOutput]("storage_inspect")
		CheckOutputSchema[types.JQOutput]("jq")
		CheckOutputSchema[types.InferSchemaOutput]("infer")
		CheckOutputSchema[types.ValidateDocsOutput]("validate")
	})
}

func TestCheckOutputSchema_NilSlice(t *testing.T) {
	type listing struct {
		IDs []string `json:"ids"`
	}
	assert.Panics(t, func() { CheckOutputSchema[listing]("ids") })

	type omitted struct {
		IDs []string `json:"ids,omitzero"`
	}
	assert.NotPanics(t, func() { CheckOutputSchema[omitted]("ids") })
}

func TestCheckOutputSchema_AnyAndPointers(t *testing.T) {
	type ptr struct {
		Keys *[]string `json:"keys"`
	}
	assert.NotPanics(t, func() {
		CheckOutputSchema[any]("any")
		CheckOutputSchema[ptr]("ptr")
		CheckOutputSchema[*types.ResultOutput]("pointer output")
	})
}

func TestCheckOutputSchema_NotAStruct(t *testing.T) {
	assert.Panics(t, func() { CheckOutputSchema[[]string]("list") })
}

func TestCheckOutputSchema_CustomEncoding(t *testing.T) {
	type raw struct {
		Doc json.RawMessage `json:"doc,omitempty"`
	}
	type rawSlice struct {
		Docs []json.RawMessage `json:"docs,omitzero"`
	}
	type result struct {
		Result *hyper.OkIDResult `json:"result,omitempty"`
	}
	type nested struct {
		Inner struct {
			Schema *invopop.Schema `json:"schema,omitempty"`
		} `json:"inner"`
	}
	type byKey struct {
		Docs map[string]*hyper.DocResult `json:"docs,omitempty"`
	}

	assert.Panics(t, func() { CheckOutputSchema[raw]("raw") })
	assert.Panics(t, func() { CheckOutputSchema[rawSlice]("raw slice") })
	assert.Panics(t, func() { CheckOutputSchema[result]("result") })
	assert.Panics(t, func() { CheckOutputSchema[nested]("nested") })
	assert.Panics(t, func() { CheckOutputSchema[byKey]("by key") })
}

func TestCheckOutputSchema_InterfaceFieldsAreNotFollowed(t *testing.T) {
	type wrapped struct {
		Result hyper.Result `json:"result,omitempty"`
	}
	assert.NotPanics(t, func() { CheckOutputSchema[wrapped]("wrapped") })
}
