// Package ytscope extracts YouTube video metadata through several
// independent methods and reconciles their outputs.
//
// Four families of extraction strategies produce the same canonical
// record: yt-dlp subprocess extraction, the official Data API v3,
// caption-track transcript fetching, and Whisper audio transcription.
// Each strategy wraps its outcome in a result envelope; the comparator
// aggregates envelopes across methods to show which method reports which
// fields and which is the best source for transcripts, tags, and
// stream-level technical details.
//
// The cmd/ytscope binary serves the strategies over HTTP with one route
// per method plus a comparison route.
package ytscope
