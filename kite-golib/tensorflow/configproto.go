package tensorflow

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// ConfigProto field numbers, from tensorflow/core/protobuf/config.proto
const (
	deviceCountField    protowire.Number = 1
	intraOpThreadsField protowire.Number = 2
	interOpThreadsField protowire.Number = 5
)

// ThreadpoolConfig returns a serialized ConfigProto limiting Tensorflow to
// threads CPU threads for both intra and inter op parallelism, suitable as an
// opaque session configuration blob. device_count only carries a CPU entry;
// GPU placement is left to the Tensorflow build.
func ThreadpoolConfig(threads int) []byte {
	var b []byte

	// device_count is a map<string, int32>; each entry is an embedded message
	// with the key as field 1 and the value as field 2
	var entry []byte
	entry = protowire.AppendTag(entry, 1, protowire.BytesType)
	entry = protowire.AppendString(entry, "CPU")
	entry = protowire.AppendTag(entry, 2, protowire.VarintType)
	entry = protowire.AppendVarint(entry, uint64(threads))
	b = protowire.AppendTag(b, deviceCountField, protowire.BytesType)
	b = protowire.AppendBytes(b, entry)

	b = protowire.AppendTag(b, intraOpThreadsField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(threads))
	b = protowire.AppendTag(b, interOpThreadsField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(threads))
	return b
}
