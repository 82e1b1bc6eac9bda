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
// Service Description Table <EN 300 468> <5.2.3>
// section header (table_id 0x42/0x46, table_id_extension transport_stream_id)
// original_network_id        [16b]
// reserved_future_use        [8b]
// -----loop-----
// service_id                 [16b]
// reserved_future_use        [6b]
// EIT_schedule_flag          [1b]
// EIT_present_following_flag [1b]
// running_status             [3b]
// free_CA_mode               [1b]
// descriptors_loop_length    [12b]
// descriptors
// --------------
// CRC_32                     [32b]
// ----------------------------------------------------------------------------

func ParseSdt(b []byte) (tsid uint16, items []SdtItem, err error) {
	h, err := ParseSectionHeader(b)
	if err != nil {
		return 0, nil, err
	}
	if h.TableId != mpegts.TsPsiIdSdtActual && h.TableId != mpegts.TsPsiIdSdtOther {
		return 0, nil, base.NewErrPsipUnexpectedTable(h.TableId)
	}
	tsid = h.TableIdExtension

	data := body(b)
	if len(data) < 3 {
		return tsid, nil, base.NewErrPsipShortBuffer(3, len(data), "sdt")
	}
	pos := 3
	for pos+5 <= len(data) {
		item := SdtItem{
			ServiceId:           bele.BeUint16(data[pos:]),
			EitScheduleFlag:     data[pos+2]&0x02 != 0,
			EitPresentFollowing: data[pos+2]&0x01 != 0,
			RunningStatus:       data[pos+3] >> 5,
			FreeCaMode:          data[pos+3]&0x10 != 0,
		}
		l := int(bele.BeUint16(data[pos+3:]) & 0x0FFF)
		pos += 5
		end := pos + l
		if end > len(data) {
			end = len(data)
		}
		forEachDescriptor(data[pos:end], func(tag uint8, d []byte) {
			if tag == DescriptorTagService {
				item.ServiceType, item.ServiceProviderName, item.ServiceName = parseServiceDescriptor(d)
			}
		})
		pos = end
		items = append(items, item)
	}
	return tsid, items, nil
}
