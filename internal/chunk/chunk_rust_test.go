package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-project/hermes/internal/store"
)

func TestChunkRustFunction(t *testing.T) {
	chunks := chunkRust("pub fn main() {}\n")
	require.Len(t, chunks, 1)
	assert.Equal(t, "main", chunks[0].Name)
	assert.Equal(t, store.NodeTypeFunction, chunks[0].NodeType)
}

func TestChunkRustStruct(t *testing.T) {
	code := "pub struct Widget {\n    id: u32,\n}\n"
	chunks := chunkRust(code)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Widget", chunks[0].Name)
	assert.Equal(t, store.NodeTypeStruct, chunks[0].NodeType)
}

func TestChunkRustEnum(t *testing.T) {
	code := "enum Shape {\n    Circle,\n    Square,\n}\n"
	chunks := chunkRust(code)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Shape", chunks[0].Name)
	assert.Equal(t, store.NodeTypeEnum, chunks[0].NodeType)
}

func TestChunkRustTrait(t *testing.T) {
	code := "pub trait Greeter {\n    fn greet(&self) -> String;\n}\n"
	chunks := chunkRust(code)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Greeter", chunks[0].Name)
	assert.Equal(t, store.NodeTypeTrait, chunks[0].NodeType)
}

func TestChunkRustImplForUsesTypeAfterFor(t *testing.T) {
	code := "impl Greeter for Widget {\n    fn greet(&self) -> String { String::new() }\n}\n"
	chunks := chunkRust(code)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Widget", chunks[0].Name)
	assert.Equal(t, store.NodeTypeImpl, chunks[0].NodeType)
}

func TestChunkRustImplPlain(t *testing.T) {
	code := "impl Widget {\n    fn new() -> Self { Widget {} }\n}\n"
	chunks := chunkRust(code)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Widget", chunks[0].Name)
}

func TestFileDispatchesRustExtension(t *testing.T) {
	chunks := File("a.rs", "pub fn main() {}\n")
	require.Len(t, chunks, 1)
	assert.Equal(t, "main", chunks[0].Name)
}
