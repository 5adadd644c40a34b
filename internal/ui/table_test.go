package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTableAlignsColumns(t *testing.T) {
	tbl := &Table{Headers: []string{"Name", "Address"}, Plain: true}
	tbl.AddRow("deployer", "0xf39F…2266")
	tbl.AddRow("x")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Name      Address", lines[0])
	assert.Equal(t, "--------  -----------", lines[1])
	assert.Equal(t, "deployer  0xf39F…2266", lines[2])
	assert.Equal(t, "x", lines[3])
}

func TestPlainTableWithoutHeaders(t *testing.T) {
	tbl := &Table{Plain: true}
	assert.Empty(t, tbl.Render())
}

func TestStyledTableContainsCells(t *testing.T) {
	tbl := &Table{Headers: []string{"Network", "Chain ID"}}
	tbl.AddRow("sepolia", "11155111")

	out := tbl.Render()
	assert.Contains(t, out, "Network")
	assert.Contains(t, out, "sepolia")
	assert.Contains(t, out, "11155111")
}

func TestKeyValueBlock(t *testing.T) {
	out := KeyValueBlock("Addresses", [][2]string{
		{"BigIncGenesis", "0x1111"},
		{"MockUSDT", "0x2222"},
	})
	assert.Contains(t, out, "Addresses")
	assert.Contains(t, out, "BigIncGenesis:")
	assert.Contains(t, out, "0x2222")
}
