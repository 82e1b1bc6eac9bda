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

// GpsEpochUnixSeconds 1980-01-06 00:00:00 UTC
//
// GPS与UTC之间的闰秒差值（STT中的GPS_UTC_offset）不做修正
const GpsEpochUnixSeconds int64 = 315964800

// mjdUnixEpoch 1970-01-01的Modified Julian Date
const mjdUnixEpoch = 40587

// ----------------------------------------------------------------------------
// ATSC Event Information Table <A/65> <6.5>
// section header (table_id 0xCB, table_id_extension source_id)
// protocol_version         [8b]
// num_events_in_section    [8b]
// -----loop-----
// reserved                 [2b]
// event_id                 [14b]
// start_time               [32b] GPS seconds
// reserved                 [2b]
// ETM_location             [2b]
// length_in_seconds        [20b]
// title_length             [8b]
// title_text               multiple_string_structure
// reserved                 [4b]
// descriptors_length       [12b]
// descriptors
// --------------
// CRC_32                   [32b]
// ----------------------------------------------------------------------------

func ParseAtscEit(b []byte) (sourceId uint16, items []EitItem, err error) {
	h, err := ParseSectionHeader(b)
	if err != nil {
		return 0, nil, err
	}
	if h.TableId != mpegts.TsPsiIdEit {
		return 0, nil, base.NewErrPsipUnexpectedTable(h.TableId)
	}
	sourceId = h.TableIdExtension

	data := body(b)
	if len(data) < 2 {
		return sourceId, nil, base.NewErrPsipShortBuffer(2, len(data), "atsc eit")
	}
	numEvents := int(data[1])
	pos := 2
	for i := 0; i < numEvents; i++ {
		if pos+10 > len(data) {
			Log.Debugf("[psip] eit truncated. source_id=%d, num_events=%d, parsed=%d", sourceId, numEvents, i)
			break
		}
		item := EitItem{
			EventId:         bele.BeUint16(data[pos:]) & 0x3FFF,
			StartTime:       GpsEpochUnixSeconds + int64(bele.BeUint32(data[pos+2:])),
			LengthInSeconds: bele.BeUint24(data[pos+6:]) & 0x0FFFFF,
		}
		titleLength := int(data[pos+9])
		pos += 10
		if pos+titleLength+2 > len(data) {
			Log.Debugf("[psip] eit title truncated. source_id=%d, event_id=%d", sourceId, item.EventId)
			break
		}
		if strs := ParseMultipleString(data[pos : pos+titleLength]); len(strs) != 0 {
			item.TitleText = strs[0].Text
			item.LanguageCode = strs[0].LanguageCode
		}
		pos += titleLength
		descriptorsLength := int(bele.BeUint16(data[pos:]) & 0x0FFF)
		pos += 2 + descriptorsLength
		items = append(items, item)
		if pos > len(data) {
			break
		}
	}
	return sourceId, items, nil
}

// ----------------------------------------------------------------------------
// DVB Event Information Table <EN 300 468> <5.2.4>
// section header (table_id 0x4E-0x6F, table_id_extension service_id)
// transport_stream_id         [16b]
// original_network_id         [16b]
// segment_last_section_number [8b]
// last_table_id               [8b]
// -----loop-----
// event_id                    [16b]
// start_time                  [40b] MJD[16b] + UTC BCD[24b]
// duration                    [24b] BCD
// running_status              [3b]
// free_CA_mode                [1b]
// descriptors_loop_length     [12b]
// descriptors
// --------------
// CRC_32                      [32b]
// ----------------------------------------------------------------------------

func ParseDvbEit(b []byte) (serviceId uint16, items []EitItem, err error) {
	h, err := ParseSectionHeader(b)
	if err != nil {
		return 0, nil, err
	}
	if h.TableId < mpegts.TsPsiIdEitPfActual || h.TableId > mpegts.TsPsiIdEitScheduleOtherEnd {
		return 0, nil, base.NewErrPsipUnexpectedTable(h.TableId)
	}
	serviceId = h.TableIdExtension

	data := body(b)
	if len(data) < 6 {
		return serviceId, nil, base.NewErrPsipShortBuffer(6, len(data), "dvb eit")
	}
	pos := 6
	for pos+12 <= len(data) {
		item := EitItem{
			EventId:         bele.BeUint16(data[pos:]),
			StartTime:       DvbTimeToUnix(data[pos+2 : pos+7]),
			LengthInSeconds: bcdDuration(data[pos+7 : pos+10]),
		}
		l := int(bele.BeUint16(data[pos+10:]) & 0x0FFF)
		pos += 12
		end := pos + l
		if end > len(data) {
			end = len(data)
		}
		var extended []byte
		forEachDescriptor(data[pos:end], func(tag uint8, d []byte) {
			switch tag {
			case DescriptorTagShortEvent:
				item.LanguageCode, item.TitleText, item.ShortText = parseShortEventDescriptor(d)
			case DescriptorTagExtendedEvent:
				extended = append(extended, parseExtendedEventDescriptorText(d)...)
			}
		})
		if len(extended) != 0 {
			item.Description = string(extended)
		}
		pos = end
		items = append(items, item)
	}
	return serviceId, items, nil
}

// DvbTimeToUnix 5字节的MJD + BCD时分秒，全部为0xFF时表示未定义，返回0
func DvbTimeToUnix(b []byte) int64 {
	if len(b) < 5 {
		return 0
	}
	if b[0] == 0xFF && b[1] == 0xFF && b[2] == 0xFF && b[3] == 0xFF && b[4] == 0xFF {
		return 0
	}
	mjd := int64(bele.BeUint16(b))
	return (mjd-mjdUnixEpoch)*86400 + int64(bcdDuration(b[2:5]))
}

func bcdDuration(b []byte) uint32 {
	return uint32(bcd(b[0]))*3600 + uint32(bcd(b[1]))*60 + uint32(bcd(b[2]))
}

func bcd(v uint8) uint8 {
	return (v>>4)*10 + v&0x0F
}
