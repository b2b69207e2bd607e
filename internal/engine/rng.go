package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"sync"
)

// DefaultStream is the HMAC message prefix used by every Source.
const DefaultStream = "trainer"

// ByteGenerator generates bytes using HMAC-SHA256 keyed by the seed,
// one 32-byte round at a time.
type ByteGenerator struct {
	key          string
	stream       string
	nonce        uint64
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

// NewByteGenerator creates a new byte generator positioned at cursor.
func NewByteGenerator(key, stream string, nonce uint64, cursor uint64) *ByteGenerator {
	bg := &ByteGenerator{
		key:          key,
		stream:       stream,
		nonce:        nonce,
		currentRound: cursor / 32,
		currentPos:   int(cursor % 32),
	}

	// Always generate the initial round
	bg.generateRound()

	return bg
}

// Next returns the next byte from the generator
func (bg *ByteGenerator) Next() byte {
	if bg.currentPos >= 32 {
		bg.currentRound++
		bg.currentPos = 0
		bg.generateRound()
	}

	b := bg.buffer[bg.currentPos]
	bg.currentPos++
	return b
}

// Next4 returns the next four bytes in stream order.
func (bg *ByteGenerator) Next4() [4]byte {
	return [4]byte{bg.Next(), bg.Next(), bg.Next(), bg.Next()}
}

// NextFloat generates the next float in [0, 1) using exactly 4 bytes
func (bg *ByteGenerator) NextFloat() float64 {
	return bytesToFloat(bg.Next4())
}

func (bg *ByteGenerator) generateRound() {
	h := hmac.New(sha256.New, []byte(bg.key))
	message := fmt.Sprintf("%s:%d:%d", bg.stream, bg.nonce, bg.currentRound)
	h.Write([]byte(message))
	copy(bg.buffer[:], h.Sum(nil))
}

// bytesToFloat converts exactly 4 bytes to float64: sum(b[i] / 256^(i+1)).
func bytesToFloat(bytes [4]byte) float64 {
	result := 0.0
	for i, b := range bytes {
		divider := math.Pow(256, float64(i+1))
		result += float64(b) / divider
	}
	return result
}

// Source is the single seeded sequence shared by every randomizer in a run.
// Components hold a *Source; Reseed replaces the state behind that pointer so
// handles taken before a reseed observe the new sequence.
type Source struct {
	mu      sync.Mutex
	seed    int64
	gen     *ByteGenerator
	draws   uint64
	reseeds int
}

// NewSource creates a Source positioned at the start of seed's sequence.
func NewSource(seed int64) *Source {
	s := &Source{}
	s.reset(seed)
	return s
}

// NewRandomSource creates a Source seeded from crypto/rand.
func NewRandomSource() (*Source, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSource(seed), nil
}

func (s *Source) reset(seed int64) {
	s.seed = seed
	s.gen = NewByteGenerator(strconv.FormatInt(seed, 10), DefaultStream, 0, 0)
	s.draws = 0
}

// Reseed atomically restarts the sequence from seed.
func (s *Source) Reseed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(seed)
	s.reseeds++
}

// NextUint32 returns a full-width value built from the next 4 bytes (big endian).
func (s *Source) NextUint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
	b := s.gen.Next4()
	return binary.BigEndian.Uint32(b[:])
}

// NextFloat returns a value in [0, 1).
func (s *Source) NextFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
	return s.gen.NextFloat()
}

// NextInt returns a value in [0, bound). It panics when bound <= 0.
func (s *Source) NextInt(bound int) int {
	if bound <= 0 {
		panic(fmt.Sprintf("engine: NextInt bound must be positive, got %d", bound))
	}
	index := int(math.Floor(s.NextFloat() * float64(bound)))
	if index >= bound {
		index = bound - 1
	}
	return index
}

// Seed returns the seed of the current sequence.
func (s *Source) Seed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed
}

// Draws returns the number of values drawn since the last (re)seed.
func (s *Source) Draws() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

// Reseeds returns how many times Reseed has been called.
func (s *Source) Reseeds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reseeds
}

// Floats generates count floats of seed's sequence starting at byte cursor.
func Floats(seed int64, cursor uint64, count int) []float64 {
	bg := NewByteGenerator(strconv.FormatInt(seed, 10), DefaultStream, 0, cursor)
	floats := make([]float64, count)

	for i := 0; i < count; i++ {
		floats[i] = bg.NextFloat()
	}

	return floats
}

// Rand is the draw surface randomizers depend on. *Source implements it.
type Rand interface {
	NextInt(bound int) int
	NextUint32() uint32
}
