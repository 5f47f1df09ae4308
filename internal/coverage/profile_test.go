/*
 * Copyright 2026 The Mutacore Authors
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

package coverage

import (
	"strings"
	"testing"
)

const sampleLCOV = `TN:
SF:src/wallet/wallet.cpp
DA:10,1
DA:11,0
DA:12,5
BRDA:12,0,0,3
FN:10,SomeFunc
end_of_record
SF:src/validation.cpp
DA:20,0
end_of_record
`

func TestParseLCOV(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleLCOV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !p.IsCovered("src/wallet/wallet.cpp", 10) {
		t.Errorf("expected line 10 to be covered")
	}
	if p.IsCovered("src/wallet/wallet.cpp", 11) {
		t.Errorf("expected line 11 (zero hits) to be uncovered")
	}
	if !p.IsCovered("src/wallet/wallet.cpp", 12) {
		t.Errorf("expected line 12 to be covered")
	}
	if p.IsCovered("src/validation.cpp", 20) {
		t.Errorf("expected line 20 (zero hits) to be uncovered")
	}
	if p.IsCovered("src/unknown.cpp", 1) {
		t.Errorf("expected an unknown file to report uncovered")
	}
}

func TestParseIgnoresMalformedDA(t *testing.T) {
	doc := "SF:a.cpp\nDA:notanumber,1\nDA:5\nend_of_record\n"
	p, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsCovered("a.cpp", 5) {
		t.Errorf("expected malformed DA records to be skipped")
	}
}

func TestParseEmptyInput(t *testing.T) {
	p, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 0 {
		t.Errorf("expected an empty profile, got %d entries", len(p))
	}
}
