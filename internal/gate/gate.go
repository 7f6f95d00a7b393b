package gate

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Errors returned by the gate.
var (
	// ErrInvalidLicense indicates the license key does not match its identity.
	ErrInvalidLicense = errors.New("invalid license")

	// ErrRegionTooSmall indicates the caller region cannot hold the state record.
	ErrRegionTooSmall = errors.New("region too small for gate state")
)

// RecordSize is the number of bytes InitAttached writes into caller memory.
const RecordSize = 32

// recordMagic marks an attached state record ("ASTR").
const recordMagic uint32 = 0x52545341

const recordVersion uint16 = 1

const flagAttached uint16 = 1

type state struct {
	session uuid.UUID
	license License
	record  []byte
}

var (
	mu        sync.Mutex
	current   *state
	satisfied atomic.Bool
)

// Init verifies l and opens the gate. Calling Init while the gate is open
// replaces the active license and session.
func Init(l License) error {
	_, err := activate(l, nil)
	return err
}

// InitAttached verifies l, opens the gate and writes the state record into
// region. It returns the number of bytes consumed.
func InitAttached(l License, region []byte) (int, error) {
	if len(region) < RecordSize {
		return 0, errors.Wrapf(ErrRegionTooSmall, "need %d bytes, have %d", RecordSize, len(region))
	}
	return activate(l, region[:RecordSize])
}

func activate(l License, record []byte) (int, error) {
	if !l.Valid() {
		return 0, errors.Wrapf(ErrInvalidLicense, "license for %q", l.Email)
	}

	mu.Lock()
	defer mu.Unlock()

	releaseLocked()

	s := &state{session: uuid.New(), license: l, record: record}
	if record != nil {
		encodeRecord(record, s)
	}
	current = s
	satisfied.Store(true)

	logrus.WithFields(logrus.Fields{
		"session":  s.session,
		"email":    l.Email,
		"attached": record != nil,
	}).Info("gate initialized")

	return len(record), nil
}

// Uninit closes the gate and clears any attached state record.
// It is a no-op when the gate is closed.
func Uninit() {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return
	}
	logrus.WithField("session", current.session).Info("gate released")
	releaseLocked()
}

func releaseLocked() {
	satisfied.Store(false)
	if current != nil && current.record != nil {
		clear(current.record)
	}
	current = nil
}

// Satisfied reports whether the gate is open.
func Satisfied() bool {
	return satisfied.Load()
}

// Session returns the ID of the active activation, or uuid.Nil.
func Session() uuid.UUID {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return uuid.Nil
	}
	return current.session
}

// Active returns the license the gate was opened with.
func Active() (License, bool) {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return License{}, false
	}
	return current.license, true
}

// Record layout (little endian):
//
//	0  magic   uint32
//	4  version uint16
//	6  flags   uint16
//	8  key     uint32
//	12 unused  [4]byte
//	16 session [16]byte
func encodeRecord(b []byte, s *state) {
	binary.LittleEndian.PutUint32(b[0:], recordMagic)
	binary.LittleEndian.PutUint16(b[4:], recordVersion)
	binary.LittleEndian.PutUint16(b[6:], flagAttached)
	binary.LittleEndian.PutUint32(b[8:], s.license.Key)
	clear(b[12:16])
	copy(b[16:32], s.session[:])
}

// ReadRecord decodes a state record written by InitAttached.
func ReadRecord(b []byte) (session uuid.UUID, key uint32, err error) {
	if len(b) < RecordSize {
		return uuid.Nil, 0, errors.Wrapf(ErrRegionTooSmall, "record is %d bytes", len(b))
	}
	if binary.LittleEndian.Uint32(b[0:]) != recordMagic {
		return uuid.Nil, 0, errors.New("gate record: bad magic")
	}
	if v := binary.LittleEndian.Uint16(b[4:]); v != recordVersion {
		return uuid.Nil, 0, errors.Errorf("gate record: unsupported version %d", v)
	}
	session, err = uuid.FromBytes(b[16:32])
	if err != nil {
		return uuid.Nil, 0, errors.Wrap(err, "gate record")
	}
	return session, binary.LittleEndian.Uint32(b[8:]), nil
}
