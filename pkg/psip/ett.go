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
// Extended Text Table <A/65> <6.6>
// section header (table_id 0xCC, table_id_extension ETT_table_id_extension)
// protocol_version         [8b]
// ETM_id                   [32b]
// extended_text_message    multiple_string_structure
// CRC_32                   [32b]
//
// ETM_id:
// channel ETM: source_id[16b] 0[14b] 00
// event ETM:   source_id[16b] event_id[14b] 10
// ----------------------------------------------------------------------------

// ParseEttEtmId 返回source_id和event_id，channel ETM的event_id为0
func ParseEttEtmId(etmId uint32) (sourceId uint16, eventId uint16) {
	sourceId = uint16(etmId >> 16)
	if etmId&0x3 == 0x2 {
		eventId = uint16(etmId>>2) & 0x3FFF
	}
	return
}

// ParseEtt
//
// @return etmId: 用于区分同一个table_id_extension下的不同ETT
func ParseEtt(b []byte) (item EttItem, etmId uint32, err error) {
	h, err := ParseSectionHeader(b)
	if err != nil {
		return item, 0, err
	}
	if h.TableId != mpegts.TsPsiIdEtt {
		return item, 0, base.NewErrPsipUnexpectedTable(h.TableId)
	}

	data := body(b)
	if len(data) < 5 {
		return item, 0, base.NewErrPsipShortBuffer(5, len(data), "ett")
	}
	etmId = bele.BeUint32(data[1:])
	item.SourceId, item.EventId = ParseEttEtmId(etmId)
	item.Text = DecodeMultipleString(data[5:])
	return item, etmId, nil
}

// PeekEttEtmId 不做完整解析，只取ETM_id，用于版本号缓存
func PeekEttEtmId(b []byte) (uint32, bool) {
	if len(b) < mpegts.SectionLongHeaderSize+5 {
		return 0, false
	}
	return bele.BeUint32(b[mpegts.SectionLongHeaderSize+1:]), true
}
