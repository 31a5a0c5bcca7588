// Package pagination walks a paginated catalog one page at a time.
//
// The Walker starts at page 1 and asks the visitor after every page whether
// to go on. It stops when the visitor declines, when the page reports no
// successor (Page.HasNext), when a fetch fails or when the context ends.
// Exactly one fetch is in flight at any time: callers that keep a running
// count across pages depend on each page being fully visited before the
// next request is issued.
//
// Example usage:
//
//	walker := pagination.NewWalker(client, pagination.DefaultConfig())
//	stats, err := walker.Walk(ctx, func(page *catalog.Page) bool {
//		for _, r := range page.Records {
//			// ...
//		}
//		return needMore
//	})
//
// The package also maps presentation offsets to page numbers.
package pagination
