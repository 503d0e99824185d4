package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"feynman_tutor/src/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, addr, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportExcel(t *testing.T) {
	ctx := context.Background()
	catalog := graph.NewStaticCatalog(nil, 5, 2)
	im := NewImporter(catalog)

	buf := workbook(t, [][]any{
		{"名称", "Description", "category", "难度", "related"},
		{"图论", "研究图的数学分支", "数学", "中等", "算法，数据结构"},
		{"", "没有名字的行"},
		{"拓扑排序", "有向无环图的线性排序", "算法", "中等", "图论"},
	})

	result, err := im.Import(ctx, "concepts.xlsx", buf)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"图论", "拓扑排序"}, result.Concepts)
	assert.Empty(t, result.Errors)

	c, err := catalog.Get(ctx, "图论")
	require.NoError(t, err)
	assert.Equal(t, "研究图的数学分支", c.Description)
	assert.ElementsMatch(t, []string{"算法", "数据结构", "拓扑排序"}, c.RelatedConcepts)
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	catalog := graph.NewStaticCatalog(nil, 5, 2)
	im := NewImporter(catalog)

	csv := "name,description,related\n哈希表,键值映射,\"数组, 哈希函数\"\n,,\n"
	result, err := im.Import(ctx, "concepts.CSV", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	c, err := catalog.Get(ctx, "哈希表")
	require.NoError(t, err)
	assert.Equal(t, []string{"数组", "哈希函数"}, c.RelatedConcepts)
}

func TestImportRejects(t *testing.T) {
	ctx := context.Background()
	im := NewImporter(graph.NewStaticCatalog(nil, 5, 2))

	_, err := im.Import(ctx, "concepts.txt", strings.NewReader("name\nx\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = im.Import(ctx, "concepts.csv", strings.NewReader("title,body\nx,y\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = im.Import(ctx, "concepts.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = im.Import(ctx, "concepts.xlsx", strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
