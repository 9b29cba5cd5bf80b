// Package crawler walks one site root and reports every page it finds.
//
// A Crawler is bound to a tag and a root URI. Add marks a relative path as
// visited and fetches it through the shared fetch.Multiplexer; when the page
// arrives its anchors are resolved, scoped to the root's host and path
// prefix, and added one level deeper. The visited set is global to the
// crawl, so each path is fetched at most once however often it is linked.
//
// Two crawlers may share one Multiplexer. The crawl is finished when the
// Multiplexer drains:
//
//	mux := fetch.NewMultiplexer(ctx, 3)
//	c := crawler.New(model.TagBefore, "https://example.com/docs/", fetcher, mux,
//		crawler.WithOnPage(handle))
//	c.Add(ctx, "", 3)
//	mux.Wait()
//
// Pages whose fetch failed are logged and dropped. Hrefs that cannot be
// resolved are logged with ErrLinkResolution and skipped.
package crawler
