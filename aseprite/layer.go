package aseprite

// Layer flags (1: Enabled, 0: Disabled)
const (
	LayerFlagVisible          = 1 << iota // 1
	LayerFlagEditable                     // 2
	LayerFlagLockMovement                 // 4
	LayerFlagBackground                   // 8
	LayerFlagPreferLinkedCels             // 16
	LayerFlagCollapsed                    // 32
	LayerFlagReference                    // 64
)

// LayerType is the kind of a layer.
type LayerType WORD

const (
	NormalLayer  LayerType = iota // 0 = Normal (image) layer
	GroupLayer                    // 1 = Group
	TilemapLayer                  // 2 = Tilemap
)

// Layer is a decoded 0x2004 chunk. Layers are numbered in the order their
// chunks appear, starting at 0.
type Layer struct {
	Flags        WORD      // Layer flags (2 bytes)
	Type         LayerType // Layer type (2 bytes)
	ChildLevel   WORD      // Layer child level (2 bytes)
	BlendMode    BlendMode // Blend mode (2 bytes)
	Opacity      BYTE      // Opacity, only valid if the header flag 1 is set (1 byte)
	Name         string    // Layer name (variable length)
	TilesetIndex DWORD     // Tileset index, only for tilemap layers (4 bytes)

	Parent int // Index of the parent group, -1 for top level layers
}

// layerChunkHeader is the fixed size part of the layer chunk (16 bytes).
type layerChunkHeader struct {
	Flags         WORD
	Type          WORD
	ChildLevel    WORD
	DefaultWidth  WORD // Ignored
	DefaultHeight WORD // Ignored
	BlendMode     WORD
	Opacity       BYTE
	Reserved      [3]BYTE
}

func parseChunk0x2004(data []byte) (*Layer, error) {
	r := newChunkReader(data, "layer chunk")

	var fixed layerChunkHeader
	if err := r.read(&fixed); err != nil {
		return nil, err
	}

	name, err := r.readString()
	if err != nil {
		return nil, err
	}

	layer := &Layer{
		Flags:      fixed.Flags,
		Type:       LayerType(fixed.Type),
		ChildLevel: fixed.ChildLevel,
		BlendMode:  BlendMode(fixed.BlendMode),
		Opacity:    fixed.Opacity,
		Name:       name,
		Parent:     -1,
	}

	if layer.Type == TilemapLayer {
		if err := r.read(&layer.TilesetIndex); err != nil {
			return nil, err
		}
	}
	// The layer UUID, when present, is not needed.

	return layer, nil
}

// Visible reports whether the layer's own visibility flag is set.
func (l *Layer) Visible() bool {
	return l.Flags&LayerFlagVisible != 0
}

// Background reports whether this is the background layer.
func (l *Layer) Background() bool {
	return l.Flags&LayerFlagBackground != 0
}

// Reference reports whether this is a reference layer, never exported.
func (l *Layer) Reference() bool {
	return l.Flags&LayerFlagReference != 0
}

// linkLayerParents resolves Parent from the child levels. A layer's parent
// is the closest previous group one level up.
func linkLayerParents(layers []*Layer) error {
	var groups []int // groups[level] = index of the open group at that level
	for i, layer := range layers {
		level := int(layer.ChildLevel)
		if level > len(groups) {
			return malformed("layer %q has child level %d below no group", layer.Name, level)
		}
		groups = groups[:level]
		if level > 0 {
			layer.Parent = groups[level-1]
		}
		if layer.Type == GroupLayer {
			groups = append(groups, i)
		}
	}
	return nil
}

// renders reports whether the cels of layer index i end up in the flattened
// frame: the layer and every group above it are visible, and it is not a
// reference or group layer.
func renders(layers []*Layer, i int) bool {
	layer := layers[i]
	if layer.Type == GroupLayer || layer.Reference() {
		return false
	}
	for ; i >= 0; i = layers[i].Parent {
		if !layers[i].Visible() {
			return false
		}
	}
	return true
}
