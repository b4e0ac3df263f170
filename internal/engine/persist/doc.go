// Package persist encodes buffer.Fields in several wire formats and moves
// persisted buffers to and from files.
//
// Every format carries the same three logical fields:
//
//	value  the whole storage array (length == capacity)
//	count  the logical length
//	shared always false, ignored on read
//
// Built-in codecs are registered under "binary", "json", "yaml" and
// "toml". Codecs are stateless and safe for concurrent use.
//
// Save writes atomically through a temporary sibling file; Watch reloads a
// file whenever it changes; DeepCopy duplicates any gob-encodable value,
// including structs holding a *buffer.Buffer.
package persist
