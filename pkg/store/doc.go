// Package store owns raven's on-disk state: the base directory layout, the
// process-wide Config (config.json), per-theme ThemeStore records
// (themes/<name>/theme.json) and the ThemeHub login (ravenserver.json).
//
// Every save goes through the same sequence: the new content is written to
// a sibling "~<file>" path, copied over the real file, and the temporary
// file is removed. A crash leaves the real file intact unless it happens
// during the copy, and a concurrent reader may see a short file while the
// copy runs. Nothing is locked across processes.
package store
