// Copyright 2024 The Vanadium Authors
// This file is part of the vanadium-sub001 library.
//
// The vanadium-sub001 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The vanadium-sub001 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the vanadium-sub001 library. If not, see <http://www.gnu.org/licenses/>.

package sim

// ShowPage implements ecall.Channel, recording the rendered frame for
// test assertions.
func (d *Device) ShowPage(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uiHistory = append(d.uiHistory, append([]byte(nil), data...))
	return nil
}

// ShowStep implements ecall.Channel, recording the step payload the same
// way ShowPage does.
func (d *Device) ShowStep(data []byte) error {
	return d.ShowPage(data)
}

// UxHistory returns every ShowPage/ShowStep payload recorded so far, in
// call order.
func (d *Device) UxHistory() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]byte(nil), d.uiHistory...)
}

// PushEvent queues a UI event for the next GetEvent call.
func (d *Device) PushEvent(code uint32, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event{code: code, data: data})
}

// GetEvent implements ecall.Channel, returning (0, nil, nil) when no
// event is queued.
func (d *Device) GetEvent() (uint32, []byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.events) == 0 {
		return 0, nil, nil
	}
	e := d.events[0]
	d.events = d.events[1:]
	return e.code, e.data, nil
}

// UxIdle implements ecall.Channel.
func (d *Device) UxIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.idleCalls++
	return nil
}

// IdleCalls returns how many times UxIdle has been invoked.
func (d *Device) IdleCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idleCalls
}

// SendBuffer implements ecall.Channel, appending chunk to the outbox. Once
// a transfer completes (totalLen == len(chunk)) the outbox holds the
// whole logical message; Outbox drains it.
func (d *Device) SendBuffer(totalLen uint32, chunk []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outbox = append(d.outbox, chunk...)
	return nil
}

// Outbox drains and returns everything received from the guest via
// SendBuffer since the last call.
func (d *Device) Outbox() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.outbox
	d.outbox = nil
	return out
}

// QueueInbound splits data into wire-sized chunks and queues them for the
// guest's next xrecv calls to ReceiveBuffer.
func (d *Device) QueueInbound(data []byte, chunkSize int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(data) == 0 {
		d.inbox = append(d.inbox, nil)
		return
	}
	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		d.inbox = append(d.inbox, data[off:end])
	}
}

// ReceiveBuffer implements ecall.Channel, delivering the next queued
// chunk and the byte count still queued behind it.
func (d *Device) ReceiveBuffer() (uint32, []byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.inbox) == 0 {
		return 0, nil, nil
	}
	chunk := d.inbox[0]
	d.inbox = d.inbox[1:]
	var remaining uint32
	for _, c := range d.inbox {
		remaining += uint32(len(c))
	}
	return remaining, chunk, nil
}
