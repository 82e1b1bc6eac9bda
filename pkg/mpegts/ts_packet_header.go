// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"github.com/q191201771/naza/pkg/nazabits"
)

// ------------------------------------------------
// <iso13818-1.pdf> <2.4.3.2> <page 36/174>
// sync_byte                    [8b]  * always 0x47
// transport_error_indicator    [1b]
// payload_unit_start_indicator [1b]
// transport_priority           [1b]
// PID                          [13b] **
// transport_scrambling_control [2b]
// adaptation_field_control     [2b]
// continuity_counter           [4b]  *
// ------------------------------------------------
type TsPacketHeader struct {
	Sync             uint8
	Err              uint8
	PayloadUnitStart uint8
	Prio             uint8
	Pid              uint16
	Scra             uint8
	Adaptation       uint8
	Cc               uint8
}

// adaptation_field_control
const (
	AdaptationFieldControlReserved = 0 // Reserved for future use by ISO/IEC
	AdaptationFieldControlNo       = 1 // No adaptation_field, payload only
	AdaptationFieldControlOnly     = 2 // Adaptation_field only, no payload
	AdaptationFieldControlFollowed = 3 // Adaptation_field followed by payload
)

// ParseTsPacketHeader 解析4字节TS Packet header
//
// @param b: 调用方保证至少4字节
func ParseTsPacketHeader(b []byte) (h TsPacketHeader) {
	br := nazabits.NewBitReader(b)
	h.Sync, _ = br.ReadBits8(8)
	h.Err, _ = br.ReadBits8(1)
	h.PayloadUnitStart, _ = br.ReadBits8(1)
	h.Prio, _ = br.ReadBits8(1)
	h.Pid, _ = br.ReadBits16(13)
	h.Scra, _ = br.ReadBits8(2)
	h.Adaptation, _ = br.ReadBits8(2)
	h.Cc, _ = br.ReadBits8(4)
	return
}

func (h *TsPacketHeader) HasAdaptation() bool {
	return h.Adaptation&0x2 != 0
}

func (h *TsPacketHeader) HasPayload() bool {
	return h.Adaptation&0x1 != 0
}

// PayloadOffset 计算payload在packet中的起始位置
//
// 注意，返回值可能大于等于 PacketSize（adaptation_field_length被损坏时），由调用方判断
//
// @param packet: 完整的TS packet，至少5字节
func PayloadOffset(h *TsPacketHeader, packet []byte) int {
	if !h.HasAdaptation() {
		return TsPacketHeaderSize
	}
	// adaptation_field_length不包括自己这1字节
	return TsPacketHeaderSize + 1 + int(packet[TsPacketHeaderSize])
}
