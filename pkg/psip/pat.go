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

// ---------------------------------------------------------------------------------------------------
// Program association section
// <iso13818-1.pdf> <2.4.4.3> <page 61/174>
// table_id                 [8b] *
// section_syntax_indicator [1b]
// '0'                      [1b]
// reserved                 [2b]
// section_length           [12b] **
// transport_stream_id      [16b] **
// reserved                 [2b]
// version_number           [5b]
// current_next_indicator   [1b]  *
// section_number           [8b]  *
// last_section_number      [8b]  *
// -----loop-----
// program_number           [16b] **
// reserved                 [3b]
// program_map_PID          [13b] ** if program_number == 0 then network_PID else then program_map_PID
// --------------
// CRC_32                   [32b] ****
// ---------------------------------------------------------------------------------------------------

// ParsePat program_number为0的network_PID不返回
func ParsePat(b []byte) (items []PatItem, err error) {
	h, err := ParseSectionHeader(b)
	if err != nil {
		return nil, err
	}
	if h.TableId != mpegts.TsPsiIdPas {
		return nil, base.NewErrPsipUnexpectedTable(h.TableId)
	}

	data := body(b)
	for i := 0; i+4 <= len(data); i += 4 {
		pn := bele.BeUint16(data[i:])
		pid := bele.BeUint16(data[i+2:]) & 0x1FFF
		if pn == 0 {
			continue
		}
		items = append(items, PatItem{
			ProgramNumber: pn,
			PmtPid:        pid,
		})
	}
	return items, nil
}
