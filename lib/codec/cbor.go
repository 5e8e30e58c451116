// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// any-typed targets decode maps as map[string]any, matching
		// encoding/json, instead of map[any]any.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Blobs are read from local storage; a corrupt length prefix
		// must not allocate unbounded memory.
		MaxArrayElements: 65536,
		MaxMapPairs:      65536,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v. Unknown fields are ignored.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for
// data, for debugging stored blobs.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// IsCBOR reports whether data starts with a CBOR map or array header.
// JSON documents start with '{', '[' or whitespace, none of which are
// CBOR map or array headers.
func IsCBOR(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	majorType := data[0] >> 5
	// 4: array, 5: map.
	return majorType == 4 || majorType == 5
}
