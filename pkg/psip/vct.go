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
// Terrestrial/Cable Virtual Channel Table <A/65> <6.3>
// section header (table_id 0xC8/0xC9, table_id_extension transport_stream_id)
// protocol_version         [8b]
// num_channels_in_section  [8b]
// -----loop-----
// short_name               [7*16b] UTF-16
// reserved                 [4b]
// major_channel_number     [10b]
// minor_channel_number     [10b]
// modulation_mode          [8b]
// carrier_frequency        [32b]
// channel_TSID             [16b]
// program_number           [16b]
// ETM_location             [2b]
// access_controlled        [1b]
// hidden                   [1b]
// path_select/reserved     [1b]
// out_of_band/reserved     [1b]
// hide_guide               [1b]
// reserved                 [3b]
// service_type             [6b]
// source_id                [16b]
// reserved                 [6b]
// descriptors_length       [10b]
// descriptors
// --------------
// reserved                 [6b]
// additional_descriptors_length [10b]
// additional_descriptors
// CRC_32                   [32b]
// ----------------------------------------------------------------------------

const vctChannelFixedSize = 32

// ParseVct TVCT与CVCT格式相同，cable独有的path_select/out_of_band字段不解析
func ParseVct(b []byte) (tsid uint16, items []VctItem, err error) {
	h, err := ParseSectionHeader(b)
	if err != nil {
		return 0, nil, err
	}
	if h.TableId != mpegts.TsPsiIdTvct && h.TableId != mpegts.TsPsiIdCvct {
		return 0, nil, base.NewErrPsipUnexpectedTable(h.TableId)
	}
	tsid = h.TableIdExtension

	data := body(b)
	if len(data) < 2 {
		return tsid, nil, base.NewErrPsipShortBuffer(2, len(data), "vct")
	}
	numChannels := int(data[1])
	pos := 2
	for i := 0; i < numChannels; i++ {
		if pos+vctChannelFixedSize > len(data) {
			Log.Debugf("[psip] vct truncated. num_channels=%d, parsed=%d", numChannels, i)
			break
		}
		item := VctItem{
			ShortName: DecodeUtf16Be(data[pos : pos+14]),
		}

		br := nazabits.NewBitReader(data[pos+14 : pos+vctChannelFixedSize])
		var flag uint8
		_, _ = br.ReadBits8(4)
		item.MajorChannelNumber, _ = br.ReadBits16(10)
		item.MinorChannelNumber, _ = br.ReadBits16(10)
		item.ModulationMode, _ = br.ReadBits8(8)
		item.CarrierFrequency, _ = br.ReadBits32(32)
		item.ChannelTsid, _ = br.ReadBits16(16)
		item.ProgramNumber, _ = br.ReadBits16(16)
		item.EtmLocation, _ = br.ReadBits8(2)
		flag, _ = br.ReadBits8(1)
		item.AccessControlled = flag == 1
		flag, _ = br.ReadBits8(1)
		item.Hidden = flag == 1
		_, _ = br.ReadBits8(2)
		flag, _ = br.ReadBits8(1)
		item.HideGuide = flag == 1
		_, _ = br.ReadBits8(3)
		item.ServiceType, _ = br.ReadBits8(6)
		item.SourceId, _ = br.ReadBits16(16)
		_, _ = br.ReadBits8(6)
		descriptorsLength, _ := br.ReadBits16(10)

		pos += vctChannelFixedSize
		end := pos + int(descriptorsLength)
		if end > len(data) {
			end = len(data)
		}
		forEachDescriptor(data[pos:end], func(tag uint8, d []byte) {
			if tag == DescriptorTagExtendedChannelName {
				item.LongName = DecodeMultipleString(d)
			}
		})
		pos = end
		items = append(items, item)
	}
	return tsid, items, nil
}
