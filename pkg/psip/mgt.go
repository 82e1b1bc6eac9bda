// Copyright 2023, Chef.  All rights reserved.
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

// ----------------------------------------------------------------------------
// Master Guide Table <A/65> <6.2>
// section header (table_id 0xC7, table_id_extension 0x0000)
// protocol_version         [8b]
// tables_defined           [16b]
// -----loop-----
// table_type               [16b]
// reserved                 [3b]
// table_type_PID           [13b]
// reserved                 [3b]
// table_type_version_number[5b]
// number_bytes             [32b]
// reserved                 [4b]
// table_type_descriptors_length [12b]
// descriptors
// --------------
// reserved                 [4b]
// descriptors_length       [12b]
// descriptors
// CRC_32                   [32b]
// ----------------------------------------------------------------------------

func ParseMgt(b []byte) (items []MgtItem, err error) {
	h, err := ParseSectionHeader(b)
	if err != nil {
		return nil, err
	}
	if h.TableId != mpegts.TsPsiIdMgt {
		return nil, base.NewErrPsipUnexpectedTable(h.TableId)
	}

	data := body(b)
	if len(data) < 3 {
		return nil, base.NewErrPsipShortBuffer(3, len(data), "mgt")
	}
	tablesDefined := int(bele.BeUint16(data[1:]))
	pos := 3
	for i := 0; i < tablesDefined; i++ {
		if pos+11 > len(data) {
			Log.Debugf("[psip] mgt truncated. defined=%d, parsed=%d", tablesDefined, i)
			break
		}
		items = append(items, MgtItem{
			TableType:     bele.BeUint16(data[pos:]),
			TablePid:      bele.BeUint16(data[pos+2:]) & 0x1FFF,
			VersionNumber: data[pos+4] & 0x1F,
			NumberBytes:   bele.BeUint32(data[pos+5:]),
		})
		pos += 11 + int(bele.BeUint16(data[pos+9:])&0x0FFF)
	}
	return items, nil
}
