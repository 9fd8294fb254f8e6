package timeseries

// assembleForwardPage turns the limit+1 ascending records fetched for a
// forward page into the response window. The extra record, when present,
// only signals that another page exists; it is trimmed and its presence
// becomes the after cursor. The before cursor is set only when this is not
// the first page.
func assembleForwardPage(records []Record, limit int, firstPage bool) ([]Record, Paging) {
	var paging Paging

	if len(records) > limit {
		records = records[:limit]
		after := EncodeCursor(records[len(records)-1].Timestamp)
		paging.After = &after
	}
	if !firstPage && len(records) > 0 {
		before := EncodeCursor(records[0].Timestamp)
		paging.Before = &before
	}
	return records, paging
}

// assembleReversePage turns the limit+1 descending records fetched for a
// reverse page into the response window, re-ordered ascending. The extra
// record signals an earlier page and becomes the before cursor; the after
// cursor always points at the window's last record.
func assembleReversePage(records []Record, limit int) ([]Record, Paging) {
	var paging Paging

	// fetched newest-first; flip to ascending
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	if len(records) > limit {
		records = records[1:]
		before := EncodeCursor(records[0].Timestamp)
		paging.Before = &before
	}
	if len(records) > 0 {
		after := EncodeCursor(records[len(records)-1].Timestamp)
		paging.After = &after
	}
	return records, paging
}
