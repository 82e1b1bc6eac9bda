// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psip

import (
	"github.com/q191201771/naza/pkg/nazabits"
	"github.com/q191201771/tunerpsi/pkg/base"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
)

// ----------------------------------------------------------------------------
// long form section header, <iso13818-1.pdf> <2.4.4.10> <page 69/174>
// table_id                 [8b]  *
// section_syntax_indicator [1b]
// private_indicator        [1b]
// reserved                 [2b]
// section_length           [12b] **
// table_id_extension       [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// ----------------------------------------------------------------------------
type SectionHeader struct {
	TableId                uint8
	SectionSyntaxIndicator uint8
	SectionLength          uint16
	TableIdExtension       uint16
	VersionNumber          uint8
	CurrentNextIndicator   uint8
	SectionNumber          uint8
	LastSectionNumber      uint8
}

// ParseSectionHeader
//
// @param b: 完整的section
func ParseSectionHeader(b []byte) (h SectionHeader, err error) {
	if len(b) < mpegts.SectionLongHeaderSize {
		return h, base.NewErrPsipShortBuffer(mpegts.SectionLongHeaderSize, len(b), "section header")
	}
	br := nazabits.NewBitReader(b)
	h.TableId, _ = br.ReadBits8(8)
	h.SectionSyntaxIndicator, _ = br.ReadBits8(1)
	_, _ = br.ReadBits8(3)
	h.SectionLength, _ = br.ReadBits16(12)
	h.TableIdExtension, _ = br.ReadBits16(16)
	_, _ = br.ReadBits8(2)
	h.VersionNumber, _ = br.ReadBits8(5)
	h.CurrentNextIndicator, _ = br.ReadBits8(1)
	h.SectionNumber, _ = br.ReadBits8(8)
	h.LastSectionNumber, _ = br.ReadBits8(8)

	if h.SectionSyntaxIndicator == 0 {
		return h, base.ErrPsipSyntax
	}
	if int(h.SectionLength)+mpegts.SectionShortHeaderSize != len(b) {
		return h, base.NewErrPsipShortBuffer(int(h.SectionLength)+mpegts.SectionShortHeaderSize, len(b), "section length")
	}
	if int(h.SectionLength) < mpegts.SectionLongHeaderSize-mpegts.SectionShortHeaderSize+mpegts.SectionCrcSize {
		return h, base.NewErrPsipShortBuffer(mpegts.SectionLongHeaderSize+mpegts.SectionCrcSize, len(b), "section body")
	}
	return h, nil
}

// body 返回section header之后、CRC_32之前的数据
func body(b []byte) []byte {
	return b[mpegts.SectionLongHeaderSize : len(b)-mpegts.SectionCrcSize]
}
