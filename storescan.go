// Package storescan turns the pages of a single storefront into a
// de-duplicated catalog of structured product records, each with a small
// set of representative images. It discovers candidate pages from the
// site's sitemap tree, renders and extracts each page, resolves product
// data through a priority-ordered fallback chain, and scores image
// candidates down to a representative subset.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency or function
// (e.g., goquery/, rod/, gemini/, crawl/, sqlite/).
package storescan
