package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/jsync/internal/tasks"
)

var (
	_ list.Item = batchItem{}
)

// batchItem wraps [tasks.BatchResult] to implement [list.Item].
type batchItem struct {
	batch tasks.BatchResult
}

func (i batchItem) FilterValue() string { return i.Title() }
func (i batchItem) Title() string       { return fmt.Sprintf("Batch %d", i.batch.Index) }
func (i batchItem) Description() string {
	return fmt.Sprintf("%d issues • %d destinations", i.batch.Issues, i.batch.Destinations)
}

func batchItems(batches []tasks.BatchResult) []list.Item {
	items := make([]list.Item, len(batches))
	for i, b := range batches {
		items[i] = batchItem{batch: b}
	}
	return items
}
