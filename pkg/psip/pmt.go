// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psip

import (
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/tunerpsi/pkg/base"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
)

// ----------------------------------------
// Program Map Table
// <iso13818-1.pdf> <2.4.4.8> <page 64/174>
// table_id                 [8b]  *
// section_syntax_indicator [1b]
// 0                        [1b]
// reserved                 [2b]
// section_length           [12b] **
// program_number           [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// reserved                 [3b]
// PCR_PID                  [13b] **
// reserved                 [4b]
// program_info_length      [12b] **
// -----loop-----
// stream_type              [8b]  *
// reserved                 [3b]
// elementary_PID           [13b] **
// reserved                 [4b]
// ES_info_length           [12b] **
// --------------
// CRC32                    [32b] ****
// ----------------------------------------

func ParsePmt(b []byte) (programNumber uint16, items []PmtItem, err error) {
	h, err := ParseSectionHeader(b)
	if err != nil {
		return 0, nil, err
	}
	if h.TableId != mpegts.TsPsiIdPms {
		return 0, nil, base.NewErrPsipUnexpectedTable(h.TableId)
	}
	programNumber = h.TableIdExtension

	data := body(b)
	if len(data) < 4 {
		return programNumber, nil, base.NewErrPsipShortBuffer(4, len(data), "pmt")
	}
	pos := 4 + int(bele.BeUint16(data[2:])&0x0FFF)

	for pos+5 <= len(data) {
		item := PmtItem{
			StreamType: data[pos],
			EsPid:      bele.BeUint16(data[pos+1:]) & 0x1FFF,
		}
		esInfoLength := int(bele.BeUint16(data[pos+3:]) & 0x0FFF)
		pos += 5
		if pos+esInfoLength > len(data) {
			Log.Debugf("[psip] pmt ES_info truncated. program=%d, pid=0x%04x", programNumber, item.EsPid)
			esInfoLength = len(data) - pos
		}
		forEachDescriptor(data[pos:pos+esInfoLength], func(tag uint8, d []byte) {
			if tag == DescriptorTagIso639Language {
				item.LanguageCode = parseIso639LanguageDescriptor(d)
			}
		})
		pos += esInfoLength
		items = append(items, item)
	}
	return programNumber, items, nil
}
