// Package compressor compresses the sparse tables of a parsing table. A compressed table answers the same
// lookups as the original one.
package compressor

import (
	"encoding/binary"
	"fmt"
	"sort"

	spec "github.com/fuclang/lrgen/spec/grammar"
)

// ForbiddenValue marks a slot of a row displacement table that no row owns.
const ForbiddenValue = -1

// Compress encodes a row-major table. emptyValue is the value of cells that carry no information; the row
// displacement encoding drops such cells.
func Compress(entries []int, colCount int, encoding spec.TableEncoding, emptyValue int) (*spec.Table, error) {
	if colCount <= 0 {
		return nil, fmt.Errorf("colCount must be >=1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("entries length or column count are incorrect; entries length: %v, column count: %v", len(entries), colCount)
	}

	tab := &spec.Table{
		Encoding:   encoding,
		RowCount:   len(entries) / colCount,
		ColCount:   colCount,
		EmptyValue: emptyValue,
	}
	switch encoding {
	case spec.TableEncodingPlain:
		tab.Entries = append([]int{}, entries...)
	case spec.TableEncodingUniqueRows:
		compressUniqueRows(tab, entries)
	case spec.TableEncodingRowDisplacement:
		compressRowDisplacement(tab, entries)
	default:
		return nil, fmt.Errorf("unknown table encoding: %v", encoding)
	}
	return tab, nil
}

// Lookup reads a cell of a compressed table.
func Lookup(tab *spec.Table, row, col int) (int, error) {
	if row < 0 || row >= tab.RowCount || col < 0 || col >= tab.ColCount {
		return tab.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	switch tab.Encoding {
	case spec.TableEncodingPlain:
		return tab.Entries[row*tab.ColCount+col], nil
	case spec.TableEncodingUniqueRows:
		return tab.Entries[tab.RowNums[row]*tab.ColCount+col], nil
	case spec.TableEncodingRowDisplacement:
		d := tab.RowDisplacement[row]
		if d+col >= len(tab.Bounds) || tab.Bounds[d+col] != row {
			return tab.EmptyValue, nil
		}
		return tab.Entries[d+col], nil
	}
	return tab.EmptyValue, fmt.Errorf("unknown table encoding: %v", tab.Encoding)
}

// Decompress restores the row-major form of a table.
func Decompress(tab *spec.Table) ([]int, error) {
	entries := make([]int, tab.RowCount*tab.ColCount)
	for row := 0; row < tab.RowCount; row++ {
		for col := 0; col < tab.ColCount; col++ {
			v, err := Lookup(tab, row, col)
			if err != nil {
				return nil, err
			}
			entries[row*tab.ColCount+col] = v
		}
	}
	return entries, nil
}

// compressUniqueRows keeps each distinct row once.
func compressUniqueRows(tab *spec.Table, entries []int) {
	var uniqueEntries []int
	rowNums := make([]int, tab.RowCount)
	key2RowNum := map[string]int{}
	nextRowNum := 0
	for row := 0; row < tab.RowCount; row++ {
		start := row * tab.ColCount
		var key string
		{
			buf := make([]byte, 0, tab.ColCount*binary.MaxVarintLen64)
			b := make([]byte, binary.MaxVarintLen64)
			for _, v := range entries[start : start+tab.ColCount] {
				n := binary.PutVarint(b, int64(v))
				buf = append(buf, b[:n]...)
			}
			key = string(buf)
		}
		rowNum, ok := key2RowNum[key]
		if !ok {
			rowNum = nextRowNum
			nextRowNum++
			key2RowNum[key] = rowNum
			uniqueEntries = append(uniqueEntries, entries[start:start+tab.ColCount]...)
		}
		rowNums[row] = rowNum
	}

	tab.Entries = uniqueEntries
	tab.RowNums = rowNums
}

type rowInfo struct {
	rowNum      int
	nonEmptyCol []int
}

// compressRowDisplacement overlays rows so that their non-empty cells do not collide. Denser rows are placed
// first.
func compressRowDisplacement(tab *spec.Table, entries []int) {
	rows := make([]rowInfo, tab.RowCount)
	for row := 0; row < tab.RowCount; row++ {
		rows[row].rowNum = row
		for col := 0; col < tab.ColCount; col++ {
			if entries[row*tab.ColCount+col] != tab.EmptyValue {
				rows[row].nonEmptyCol = append(rows[row].nonEmptyCol, col)
			}
		}
	}
	sort.SliceStable(rows, func(i int, j int) bool {
		return len(rows[i].nonEmptyCol) > len(rows[j].nonEmptyCol)
	})

	var compressed []int
	var bounds []int
	grow := func(size int) {
		for len(bounds) < size {
			compressed = append(compressed, tab.EmptyValue)
			bounds = append(bounds, ForbiddenValue)
		}
	}
	grow(len(entries) + tab.ColCount)
	rowDisplacement := make([]int, tab.RowCount)
	resultBottom := tab.ColCount

	nextRowDisplacement := 0
	for _, r := range rows {
		if len(r.nonEmptyCol) == 0 {
			continue
		}
		d := nextRowDisplacement
		for {
			grow(d + tab.ColCount)
			overlapped := false
			for _, col := range r.nonEmptyCol {
				if bounds[d+col] != ForbiddenValue {
					overlapped = true
					break
				}
			}
			if !overlapped {
				break
			}
			d++
		}

		rowDisplacement[r.rowNum] = d
		for _, col := range r.nonEmptyCol {
			compressed[d+col] = entries[r.rowNum*tab.ColCount+col]
			bounds[d+col] = r.rowNum
		}
		if d+tab.ColCount > resultBottom {
			resultBottom = d + tab.ColCount
		}
		nextRowDisplacement = d + 1
	}

	tab.Entries = compressed[:resultBottom]
	tab.Bounds = bounds[:resultBottom]
	tab.RowDisplacement = rowDisplacement
}
