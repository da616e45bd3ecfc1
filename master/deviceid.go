// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package master

import (
	"context"
	"fmt"

	"github.com/ffutop/modbus-master/modbus/function"
)

// ReadDeviceIdentification reads identification objects starting at
// objectID and follows the more-follows chain until the slave reports the
// last fragment. Objects are returned in the order received. The master
// lock is held for the whole sequence.
func (m *Master) ReadDeviceIdentification(ctx context.Context, slaveID, readDeviceIDCode, objectID byte) (function.DeviceIdentification, error) {
	fn := function.ReadDeviceIdentification{ReadDeviceIDCode: readDeviceIDCode, ObjectID: objectID}

	m.mu.Lock()
	defer m.mu.Unlock()

	var ident function.DeviceIdentification
	for fragment := 0; ; fragment++ {
		if fragment >= m.maxFragments {
			return function.DeviceIdentification{}, fmt.Errorf("%w: more follows after %d fragments", ErrTooManyFragments, fragment)
		}
		pdu, err := fn.Encode()
		if err != nil {
			return function.DeviceIdentification{}, err
		}
		resp, err := m.transact(ctx, slaveID, pdu, true)
		if err != nil {
			return function.DeviceIdentification{}, err
		}
		part, err := fn.Decode(resp.PDU)
		if err != nil {
			return function.DeviceIdentification{}, err
		}

		m.logger.Debug("device identification fragment", "slave", slaveID, "fragment", fragment,
			"objects", len(part.Objects), "more_follows", part.MoreFollows, "next_object_id", part.NextObjectID)
		ident.ReadDeviceIDCode = part.ReadDeviceIDCode
		ident.Conformity = part.Conformity
		ident.MoreFollows = part.MoreFollows
		ident.NextObjectID = part.NextObjectID
		ident.Objects = append(ident.Objects, part.Objects...)
		if !part.MoreFollows {
			return ident, nil
		}
		fn.ObjectID = part.NextObjectID
	}
}
