package types

// MetaEntry is one post-metadata key/value pair. Metadata order is
// preserved through export and import.
type MetaEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// MetaKeyThumbnail marks a featured-media reference. Its value is a media
// ID and is rewritten through the media remap on import.
const MetaKeyThumbnail = "_thumbnail_id"

// nonPortableMetaKeys are host-internal transient keys excluded from
// export: editor locks and pingback bookkeeping.
var nonPortableMetaKeys = map[string]bool{
	"_edit_lock": true,
	"_edit_last": true,
	"_pingme":    true,
	"_encloseme": true,
}

// PortableMetaKey reports whether a metadata key should be carried in a
// blueprint.
func PortableMetaKey(key string) bool {
	return !nonPortableMetaKeys[key]
}
