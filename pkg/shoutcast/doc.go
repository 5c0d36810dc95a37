// Package shoutcast opens live ICY/Shoutcast audio streams for recording.
//
// It follows the same approach as github.com/romantomjak/shoutcast, reduced to what a
// timed recording needs:
//   - Playlist resolution: .m3u URLs are resolved to the first stream URL they name
//   - Stream info taken from the Content-Type and icy-* response headers
//   - No client timeout on the stream so long-running recording is supported
package shoutcast
