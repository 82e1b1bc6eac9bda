// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// ISectionSink 接收从TS流中重组出来的完整section
type ISectionSink interface {
	// OnSection
	//
	// @param section: 从table_id开始，到CRC_32结束（如果有）的完整section，回调结束后，内部不再持有
	OnSection(pid uint16, section []byte)
}

// SectionStream 单个PID上的section重组
//
// 两个隐含状态：
// - 寻找section起始位置（buf为空，丢弃所有payload_unit_start_indicator为0的包）
// - 累积中（buf不为空）
//
// continuity_counter不连续时，认为发生了丢包，丢弃已经累积的数据，已经不完整的section绝不交给上层解析
type SectionStream struct {
	pid            uint16
	sink           ISectionSink
	maxSectionSize int

	lastCc int // -1 表示还没有收到过包
	buf    []byte
}

func NewSectionStream(pid uint16, sink ISectionSink, maxSectionSize int) *SectionStream {
	return &SectionStream{
		pid:            pid,
		sink:           sink,
		maxSectionSize: maxSectionSize,
		lastCc:         -1,
	}
}

func (s *SectionStream) Pid() uint16 {
	return s.pid
}

// FeedPacket 实现 IPacketStream
func (s *SectionStream) FeedPacket(payload []byte, cc uint8, payloadUnitStart bool) {
	if (s.lastCc+1)%16 != int(cc) {
		if len(s.buf) != 0 {
			Log.Debugf("[mpegts] continuity lost, drop partial section. pid=0x%04x, last=%d, cc=%d, buffered=%d",
				s.pid, s.lastCc, cc, len(s.buf))
		}
		s.buf = s.buf[:0]
	}
	s.lastCc = int(cc)

	if !payloadUnitStart {
		if len(s.buf) == 0 {
			// 还不知道section的边界
			return
		}
		s.buf = append(s.buf, payload...)
		s.extract()
		return
	}

	// payload的首字节是pointer_field
	if len(payload) == 0 {
		s.buf = s.buf[:0]
		return
	}
	sectionStart := 1 + int(payload[0])
	if sectionStart >= len(payload) {
		Log.Warnf("[mpegts] pointer_field out of range, drop. pid=0x%04x, pointer=%d, payload=%d",
			s.pid, payload[0], len(payload))
		s.buf = s.buf[:0]
		return
	}

	// pointer_field之前的数据属于上一个section的尾部
	if len(s.buf) != 0 {
		s.buf = append(s.buf, payload[1:sectionStart]...)
		s.extract()
	}

	// 新的section从这里开始，之前还残留的不完整数据丢弃
	s.buf = append(s.buf[:0], payload[sectionStart:]...)
	s.extract()
}

// Reset 清空累积数据以及continuity_counter状态
func (s *SectionStream) Reset() {
	s.buf = s.buf[:0]
	s.lastCc = -1
}

// Buffered 当前累积的字节数，主要用于调试和测试
func (s *SectionStream) Buffered() int {
	return len(s.buf)
}

func (s *SectionStream) extract() {
	consumed, err := ExtractSections(s.buf, s.maxSectionSize, func(section []byte) {
		s.sink.OnSection(s.pid, section)
	})
	if err != nil {
		Log.Warnf("[mpegts] %+v, drop. pid=0x%04x", err, s.pid)
		s.buf = s.buf[:0]
		return
	}
	if consumed == 0 {
		return
	}
	n := copy(s.buf, s.buf[consumed:])
	s.buf = s.buf[:n]
}

// ExtractSections 从b的起始位置切出所有完整的section
//
// 遇到0xFF填充字节时，认为剩余数据都是填充。不完整的尾部section不消费，留给下一次调用。
//
// @return consumed: 已经处理完毕可以丢弃的字节数
// @return err:      section_length超过maxSectionSize时返回 base.ErrMpegtsSectionTooLong，此时b整体应该被丢弃
func ExtractSections(b []byte, maxSectionSize int, onSection func(section []byte)) (consumed int, err error) {
	pos := 0
	for pos < len(b) {
		if b[pos] == TsPsiIdForbidden {
			return len(b), nil
		}
		if len(b)-pos < SectionShortHeaderSize {
			break
		}
		sectionSize := SectionShortHeaderSize + SectionLength(b[pos:])
		if sectionSize > maxSectionSize {
			return len(b), newErrSectionTooLong(sectionSize, maxSectionSize)
		}
		if len(b)-pos < sectionSize {
			break
		}
		onSection(b[pos : pos+sectionSize])
		pos += sectionSize
	}
	return pos, nil
}
