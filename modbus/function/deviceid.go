// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package function

import (
	"fmt"

	"github.com/ffutop/modbus-master/modbus"
)

// Read device ID codes.
const (
	ReadDeviceIDBasic    byte = 0x01
	ReadDeviceIDRegular  byte = 0x02
	ReadDeviceIDExtended byte = 0x03
	ReadDeviceIDSpecific byte = 0x04
)

// Basic and regular object ids.
const (
	ObjectVendorName          byte = 0x00
	ObjectProductCode         byte = 0x01
	ObjectMajorMinorRevision  byte = 0x02
	ObjectVendorURL           byte = 0x03
	ObjectProductName         byte = 0x04
	ObjectModelName           byte = 0x05
	ObjectUserApplicationName byte = 0x06
)

const moreFollows = 0xFF

var objectNames = map[byte]string{
	ObjectVendorName:          "VendorName",
	ObjectProductCode:         "ProductCode",
	ObjectMajorMinorRevision:  "MajorMinorRevision",
	ObjectVendorURL:           "VendorUrl",
	ObjectProductName:         "ProductName",
	ObjectModelName:           "ModelName",
	ObjectUserApplicationName: "UserApplicationName",
}

// ObjectName returns the standard name of a device identification object.
func ObjectName(id byte) string {
	if name, ok := objectNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Object 0x%02x", id)
}

// DeviceObject is one identification object.
type DeviceObject struct {
	ID    byte
	Value []byte
}

// DeviceIdentification is one fragment of a read device identification
// reply, or all of them merged.
type DeviceIdentification struct {
	ReadDeviceIDCode byte
	Conformity       byte
	MoreFollows      bool
	NextObjectID     byte
	Objects          []DeviceObject
}

// ReadDeviceIdentification reads identification objects starting at
// ObjectID. Use ObjectID 0 to start a stream.
type ReadDeviceIdentification struct {
	ReadDeviceIDCode byte
	ObjectID         byte
}

func (f ReadDeviceIdentification) Code() byte { return modbus.FuncCodeEncapsulatedInterface }

// Request:
//
//	Function code         : 1 byte (0x2B)
//	MEI type              : 1 byte (0x0E)
//	Read device ID code   : 1 byte
//	Object id             : 1 byte
func (f ReadDeviceIdentification) Encode() (modbus.ProtocolDataUnit, error) {
	if f.ReadDeviceIDCode < ReadDeviceIDBasic || f.ReadDeviceIDCode > ReadDeviceIDSpecific {
		return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("read device id code '%v' must be between '%v' and '%v'", f.ReadDeviceIDCode, ReadDeviceIDBasic, ReadDeviceIDSpecific)
	}
	return modbus.ProtocolDataUnit{
		FunctionCode: f.Code(),
		Data:         []byte{modbus.MEITypeReadDeviceID, f.ReadDeviceIDCode, f.ObjectID},
	}, nil
}

// Response:
//
//	Function code         : 1 byte (0x2B)
//	MEI type              : 1 byte (0x0E)
//	Read device ID code   : 1 byte
//	Conformity level      : 1 byte
//	More follows          : 1 byte (0x00 or 0xFF)
//	Next object id        : 1 byte
//	Number of objects     : 1 byte
//	Object N              : id(1) length(1) value(length)
func (f ReadDeviceIdentification) Decode(pdu modbus.ProtocolDataUnit) (DeviceIdentification, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return DeviceIdentification{}, err
	}
	mei, err := r.uint8()
	if err != nil {
		return DeviceIdentification{}, err
	}
	if mei != modbus.MEITypeReadDeviceID {
		return DeviceIdentification{}, modbus.MalformedPDU(f.Code(), "mei type '%v' does not match '%v'", mei, modbus.MEITypeReadDeviceID)
	}
	if err := r.need(5); err != nil {
		return DeviceIdentification{}, err
	}
	var result DeviceIdentification
	result.ReadDeviceIDCode, _ = r.uint8()
	result.Conformity, _ = r.uint8()
	more, _ := r.uint8()
	result.MoreFollows = more == moreFollows
	result.NextObjectID, _ = r.uint8()
	count, _ := r.uint8()

	for i := 0; i < int(count); i++ {
		var obj DeviceObject
		if obj.ID, err = r.uint8(); err != nil {
			return DeviceIdentification{}, err
		}
		length, err := r.uint8()
		if err != nil {
			return DeviceIdentification{}, err
		}
		if obj.Value, err = r.bytes(int(length)); err != nil {
			return DeviceIdentification{}, err
		}
		result.Objects = append(result.Objects, obj)
	}
	if err := r.end(); err != nil {
		return DeviceIdentification{}, err
	}
	return result, nil
}
