// Package convert encodes Go values as engine variants and decodes them back.
//
// Types that implement core.ToVariant and core.FromVariant convert through
// those methods. Everything else is derived from the Go type:
//
//	bool, ints, floats, string    Bool, Int, Float, String
//	geom values                   the matching geometry kind
//	[]byte                        PoolByteArray
//	[]T, [N]T                     Array (typed pool arrays also decode)
//	map[K]V                       Dictionary
//	*T                            Nil or the value
//	struct                        Dictionary keyed by field name
//	Enum                          String holding the variant name
//	TaggedEnum                    Dictionary {variant: payload}
//
// Struct keys default to the snake_case field name. The gd tag overrides the
// name, skips a field with "-", and limits a field to one direction with
// the skip_to and skip_from options:
//
//	type Stats struct {
//		MaxHP int             // "max_hp"
//		Name  string `gd:"n"`
//		Cache []int  `gd:"-"`
//		Seen  bool   `gd:",skip_from"`
//	}
//
// Codecs are compiled once per Go type and cached.
package convert
