// Package flv summarises Flash Video payloads embedded as video items: the
// header flags, tag counts, codec identifiers, and the onMetaData script
// object (AMF0). Tags are demuxed with yutopp/go-flv; frames are never
// decoded.
package flv
