/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package w3c

import (
	jsonutil "github.com/hyperledger/aries-framework-go/component/models/util/json"
)

// CustomFields holds the JSON fields of a document that have no struct field.
type CustomFields map[string]interface{}

// unmarshalWithCustomFields unmarshals data into v and returns the fields v does not hold, nil if there are none.
func unmarshalWithCustomFields(data []byte, v interface{}) (CustomFields, error) {
	cf := make(CustomFields)

	if err := jsonutil.UnmarshalWithCustomFields(data, v, cf); err != nil {
		return nil, err
	}

	if len(cf) == 0 {
		return nil, nil
	}

	return cf, nil
}
