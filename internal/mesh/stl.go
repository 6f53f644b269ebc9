package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed reports model data that could not be decoded.
var ErrMalformed = errors.New("malformed model data")

const (
	// FormatBinarySTL identifies the binary STL encoding in metadata.
	FormatBinarySTL = "stl-binary"
	// FormatASCIISTL identifies the ASCII STL encoding in metadata.
	FormatASCIISTL = "stl-ascii"

	binaryHeaderSize = 80
	facetSize        = 50 // 12 floats + uint16 attribute
)

// Triangle is one facet of a decoded solid, vertices in file order.
type Triangle struct {
	V [3][3]float64
}

// Solid is the decoded geometry of a model file.
type Solid struct {
	Format    string
	Name      string
	Triangles []Triangle
	Bounds    Bounds
}

// DecodeSTL parses binary or ASCII STL data, detecting the encoding from
// the payload itself. The "solid" prefix alone is not trusted: binary files
// exported with a chatty header are recognized by their length arithmetic.
func DecodeSTL(data []byte) (*Solid, error) {
	if looksBinary(data) {
		return decodeBinarySTL(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return decodeASCIISTL(data)
	}
	return nil, fmt.Errorf("%w: unrecognized encoding", ErrMalformed)
}

func looksBinary(data []byte) bool {
	if len(data) < binaryHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
	return len(data) == binaryHeaderSize+4+int(count)*facetSize
}

func decodeBinarySTL(data []byte) (*Solid, error) {
	count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
	solid := &Solid{
		Format:    FormatBinarySTL,
		Triangles: make([]Triangle, 0, count),
	}
	box := newBoundsAccumulator()
	offset := binaryHeaderSize + 4
	for i := uint32(0); i < count; i++ {
		var tri Triangle
		// Skip the 12-byte normal; it is recomputed when rendering.
		base := offset + 12
		for v := 0; v < 3; v++ {
			for axis := 0; axis < 3; axis++ {
				bits := binary.LittleEndian.Uint32(data[base:])
				value := float64(math.Float32frombits(bits))
				if math.IsNaN(value) || math.IsInf(value, 0) {
					return nil, fmt.Errorf("%w: non-finite vertex in facet %d", ErrMalformed, i)
				}
				tri.V[v][axis] = value
				base += 4
			}
			box.add(tri.V[v])
		}
		solid.Triangles = append(solid.Triangles, tri)
		offset += facetSize
	}
	solid.Bounds = box.bounds()
	return solid, nil
}

func decodeASCIISTL(data []byte) (*Solid, error) {
	solid := &Solid{Format: FormatASCIISTL}
	box := newBoundsAccumulator()

	scan := bufio.NewScanner(bytes.NewReader(data))
	scan.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		tri       Triangle
		vertexIdx int
		inFacet   bool
	)
	for scan.Scan() {
		fields := strings.Fields(scan.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if solid.Name == "" && len(fields) > 1 {
				solid.Name = strings.Join(fields[1:], " ")
			}
		case "facet":
			if inFacet {
				return nil, fmt.Errorf("%w: nested facet", ErrMalformed)
			}
			inFacet = true
			vertexIdx = 0
		case "vertex":
			if !inFacet || vertexIdx >= 3 {
				return nil, fmt.Errorf("%w: stray vertex", ErrMalformed)
			}
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: vertex needs three coordinates", ErrMalformed)
			}
			for axis := 0; axis < 3; axis++ {
				value, err := strconv.ParseFloat(fields[axis+1], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: bad coordinate %q", ErrMalformed, fields[axis+1])
				}
				tri.V[vertexIdx][axis] = value
			}
			box.add(tri.V[vertexIdx])
			vertexIdx++
		case "endfacet":
			if !inFacet || vertexIdx != 3 {
				return nil, fmt.Errorf("%w: facet with %d vertices", ErrMalformed, vertexIdx)
			}
			solid.Triangles = append(solid.Triangles, tri)
			inFacet = false
		case "endsolid":
			if inFacet {
				return nil, fmt.Errorf("%w: endsolid inside facet", ErrMalformed)
			}
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if inFacet {
		return nil, fmt.Errorf("%w: truncated facet", ErrMalformed)
	}
	solid.Bounds = box.bounds()
	return solid, nil
}

type boundsAccumulator struct {
	min, max [3]float64
	seen     bool
}

func newBoundsAccumulator() *boundsAccumulator {
	return &boundsAccumulator{}
}

func (b *boundsAccumulator) add(v [3]float64) {
	if !b.seen {
		b.min, b.max = v, v
		b.seen = true
		return
	}
	for axis := 0; axis < 3; axis++ {
		if v[axis] < b.min[axis] {
			b.min[axis] = v[axis]
		}
		if v[axis] > b.max[axis] {
			b.max[axis] = v[axis]
		}
	}
}

func (b *boundsAccumulator) bounds() Bounds {
	if !b.seen {
		return Bounds{}
	}
	return Bounds{
		MinX: b.min[0], MinY: b.min[1], MinZ: b.min[2],
		MaxX: b.max[0], MaxY: b.max[1], MaxZ: b.max[2],
	}
}
