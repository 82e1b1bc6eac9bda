// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// IPacketStream 某个PID的TS payload接收者
type IPacketStream interface {
	// FeedPacket
	//
	// @param payload: 去掉TS header以及adaptation field之后的数据，回调结束后，内部不再持有
	FeedPacket(payload []byte, cc uint8, payloadUnitStart bool)
}

// FeedStat 一次 FeedPackets 调用的统计
type FeedStat struct {
	Packets       int // 完整的188字节窗口数
	Dispatched    int // 交给了 IPacketStream 的包数
	DropSync      int // sync_byte 不是0x47
	DropErr       int // transport_error_indicator 为1
	DropNoPayload int
	DropUnknown   int // 没有注册该PID
	DropMalformed int // adaptation_field_length 越界
}

// FeedPackets 按188字节切分b[offset:offset+length]，并把每个合法packet的payload交给对应PID的stream
//
// 自身无状态，末尾不足188字节的部分直接忽略。所有异常都是丢包处理，不返回错误。
//
// @param lookup: 返回nil表示没有监听该PID
func FeedPackets(b []byte, offset, length int, lookup func(pid uint16) IPacketStream) (stat FeedStat) {
	if offset < 0 || length <= 0 || offset >= len(b) {
		return
	}
	end := offset + length
	if end > len(b) {
		end = len(b)
	}

	for pos := offset; pos+PacketSize <= end; pos += PacketSize {
		packet := b[pos : pos+PacketSize]
		stat.Packets++

		if packet[0] != SyncByte {
			stat.DropSync++
			continue
		}
		h := ParseTsPacketHeader(packet)
		if h.Err != 0 {
			stat.DropErr++
			continue
		}
		if !h.HasPayload() {
			stat.DropNoPayload++
			continue
		}
		stream := lookup(h.Pid)
		if stream == nil {
			stat.DropUnknown++
			continue
		}
		payloadOffset := PayloadOffset(&h, packet)
		if payloadOffset >= PacketSize {
			stat.DropMalformed++
			continue
		}

		stat.Dispatched++
		stream.FeedPacket(packet[payloadOffset:], h.Cc, h.PayloadUnitStart == 1)
	}
	return
}

func (stat *FeedStat) Add(other FeedStat) {
	stat.Packets += other.Packets
	stat.Dispatched += other.Dispatched
	stat.DropSync += other.DropSync
	stat.DropErr += other.DropErr
	stat.DropNoPayload += other.DropNoPayload
	stat.DropUnknown += other.DropUnknown
	stat.DropMalformed += other.DropMalformed
}
