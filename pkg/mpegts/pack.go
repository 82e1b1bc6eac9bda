// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// SectionFrame 一个或多个完整的section，用于打包成mpegts格式的数据
//
// 用于把解析出的表重新封装成TS流，比如录制、转发，以及构造测试数据
type SectionFrame struct {
	Pid uint16
	Cc  uint8 // continuity_counter of TS Header，每个packet使用前先加1

	// 从table_id开始的完整section，可以是多个section首尾相连
	Raw []byte
}

// Pack 将section打包成mpegts流
//
// 注意，内部会增加 SectionFrame.Cc 的值.
// 首个packet的payload_unit_start_indicator为1，pointer_field为0。最后一个packet剩余空间使用0xFF填充。
//
// @return: 内存块为独立申请，调度结束后，内部不再持有
func (frame *SectionFrame) Pack() []byte {
	// 首个packet有1字节pointer_field
	total := len(frame.Raw) + 1
	payloadSize := PacketSize - TsPacketHeaderSize
	packetNum := (total + payloadSize - 1) / payloadSize
	if packetNum == 0 {
		packetNum = 1
	}
	buf := make([]byte, packetNum*PacketSize)

	lpos := 0              // 当前输入的处理位置
	rpos := len(frame.Raw) // 输入大小
	first := true
	packetPosAtBuf := 0 // 当前输出packet相对于整个输出内存块的位置

	for i := 0; i < packetNum; i++ {
		packet := buf[packetPosAtBuf : packetPosAtBuf+PacketSize]
		packetPosAtBuf += PacketSize

		// -----TS Header----------------
		// sync_byte
		// transport_error_indicator    0
		// payload_unit_start_indicator
		// transport_priority           0
		// PID
		// transport_scrambling_control 0
		// adaptation_field_control     1, 只有payload
		// continuity_counter
		// ------------------------------
		packet[0] = SyncByte
		packet[1] = 0x0
		if first {
			packet[1] = 0x40
		}
		packet[1] |= uint8((frame.Pid >> 8) & 0x1F) // PID高5位
		packet[2] = uint8(frame.Pid & 0xFF)         // PID低8位
		frame.Cc++
		packet[3] = 0x10 | (frame.Cc & 0x0f)
		wpos := TsPacketHeaderSize

		if first {
			packet[wpos] = 0 // pointer_field
			wpos++
			first = false
		}

		n := copy(packet[wpos:], frame.Raw[lpos:rpos])
		lpos += n
		wpos += n

		// PSI使用payload内的0xFF填充，而不是adaptation field
		for ; wpos < PacketSize; wpos++ {
			packet[wpos] = 0xFF
		}
	}

	return buf
}
