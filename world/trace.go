// This file is part of go-mc/server project.
// Copyright (C) 2023.  Tnze
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package world

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Tnze/go-mc/data/packetid"
	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"

	"FlowySync/world/protocol"
)

var traceMagic = [4]byte{'F', 'S', 'T', 'R'}

var ErrBadTrace = errors.New("not a message trace")

// TraceRecorder writes every message the tracker emits into a zstd stream.
// The stream starts with a magic and the session id, followed by records of
// tick (VarLong), packet id (VarInt), length (VarInt) and the packet body.
type TraceRecorder struct {
	mu      sync.Mutex
	enc     *zstd.Encoder
	buf     bytes.Buffer
	session ksuid.KSUID
	count   int
}

func NewTraceRecorder(w io.Writer) (*TraceRecorder, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	r := &TraceRecorder{enc: enc, session: ksuid.New()}
	if _, err := enc.Write(traceMagic[:]); err != nil {
		return nil, err
	}
	if _, err := enc.Write(r.session.Bytes()); err != nil {
		return nil, err
	}
	return r, nil
}

// Session identifies this recording.
func (r *TraceRecorder) Session() ksuid.KSUID { return r.session }

// Count returns the number of recorded messages.
func (r *TraceRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *TraceRecorder) Record(tick uint64, m protocol.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var body bytes.Buffer
	if _, err := m.WriteTo(&body); err != nil {
		return fmt.Errorf("encode %v: %w", m.PacketID(), err)
	}
	r.buf.Reset()
	_, err := pk.Tuple{
		pk.VarLong(tick),
		pk.VarInt(m.PacketID()),
		pk.VarInt(body.Len()),
	}.WriteTo(&r.buf)
	if err != nil {
		return err
	}
	r.buf.Write(body.Bytes())
	if _, err := r.enc.Write(r.buf.Bytes()); err != nil {
		return err
	}
	r.count++
	return nil
}

// Close flushes the stream. It does not close the underlying writer.
func (r *TraceRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Close()
}

type TraceRecord struct {
	Tick     uint64
	PacketID packetid.ClientboundPacketID
	Data     []byte
}

type TraceReader struct {
	dec     *zstd.Decoder
	r       *bufio.Reader
	session ksuid.KSUID
}

func NewTraceReader(r io.Reader) (*TraceReader, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	tr := &TraceReader{dec: dec, r: bufio.NewReader(dec)}

	var header [len(traceMagic) + 20]byte
	if _, err := io.ReadFull(tr.r, header[:]); err != nil {
		dec.Close()
		return nil, fmt.Errorf("read trace header: %w", err)
	}
	if !bytes.Equal(header[:len(traceMagic)], traceMagic[:]) {
		dec.Close()
		return nil, ErrBadTrace
	}
	if tr.session, err = ksuid.FromBytes(header[len(traceMagic):]); err != nil {
		dec.Close()
		return nil, fmt.Errorf("%w: %v", ErrBadTrace, err)
	}
	return tr, nil
}

func (r *TraceReader) Session() ksuid.KSUID { return r.session }

// Next returns the next record, or io.EOF at the end of the trace.
func (r *TraceReader) Next() (rec TraceRecord, err error) {
	var (
		tick   pk.VarLong
		id     pk.VarInt
		length pk.VarInt
	)
	if _, err = tick.ReadFrom(r.r); err != nil {
		if errors.Is(err, io.EOF) {
			return rec, io.EOF
		}
		return rec, err
	}
	if _, err = (pk.Tuple{&id, &length}).ReadFrom(r.r); err != nil {
		return rec, fmt.Errorf("read record header: %w", io.ErrUnexpectedEOF)
	}
	if length < 0 {
		return rec, fmt.Errorf("%w: negative record length %d", ErrBadTrace, length)
	}
	rec.Tick = uint64(tick)
	rec.PacketID = packetid.ClientboundPacketID(id)
	rec.Data = make([]byte, length)
	if _, err = io.ReadFull(r.r, rec.Data); err != nil {
		return rec, fmt.Errorf("read record body: %w", err)
	}
	return rec, nil
}

func (r *TraceReader) Close() { r.dec.Close() }
