// Package audio captures voice memos and encodes them for the extraction
// capability.
//
// A Source opens a Stream that delivers PCM chunks as explicit events. A
// Recorder owns one stream per session: it acquires the device on Start,
// buffers every non-empty chunk, and releases the device on Stop, including
// when capture fails. The resulting Blob is encoded into a self-describing
// Payload (MIME type + bytes); captured PCM is always wrapped as WAV.
package audio
