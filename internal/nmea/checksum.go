// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

import "fmt"

// Checksum XORs every byte of body (the text between '$' and '*') and returns
// it as two uppercase hex digits.
func Checksum(body string) string {
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return fmt.Sprintf("%02X", cs)
}

// wrap frames a body as a complete sentence.
func wrap(body string) string {
	return "$" + body + "*" + Checksum(body)
}
