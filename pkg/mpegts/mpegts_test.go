// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/asticode/go-astits"
	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tunerpsi/pkg/innertest"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
	"github.com/q191201771/tunerpsi/pkg/psip"
)

type sectionRecorder struct {
	sections [][]byte
}

func (r *sectionRecorder) OnSection(pid uint16, section []byte) {
	r.sections = append(r.sections, append([]byte(nil), section...))
}

type packetRecorder struct {
	payloads [][]byte
	ccs      []uint8
	pusis    []bool
}

func (r *packetRecorder) FeedPacket(payload []byte, cc uint8, payloadUnitStart bool) {
	r.payloads = append(r.payloads, append([]byte(nil), payload...))
	r.ccs = append(r.ccs, cc)
	r.pusis = append(r.pusis, payloadUnitStart)
}

// fakeSection 指定body长度的section，内容无意义
func fakeSection(tableId uint8, bodyLen int) []byte {
	body := make([]byte, bodyLen)
	for i := range body {
		body[i] = uint8(i)
	}
	return innertest.PackSection(tableId, 1, 0, 0, 0, body)
}

func packets(b []byte) [][]byte {
	var ret [][]byte
	for i := 0; i+mpegts.PacketSize <= len(b); i += mpegts.PacketSize {
		ret = append(ret, b[i:i+mpegts.PacketSize])
	}
	return ret
}

func TestParseTsPacketHeader(t *testing.T) {
	h := mpegts.ParseTsPacketHeader([]byte{0x47, 0x5F, 0xFB, 0x3A, 0x07})
	assert.Equal(t, uint8(0x47), h.Sync)
	assert.Equal(t, uint8(0), h.Err)
	assert.Equal(t, uint8(1), h.PayloadUnitStart)
	assert.Equal(t, uint16(0x1FFB), h.Pid)
	assert.Equal(t, uint8(mpegts.AdaptationFieldControlFollowed), h.Adaptation)
	assert.Equal(t, uint8(0x0A), h.Cc)
	assert.Equal(t, true, h.HasAdaptation())
	assert.Equal(t, true, h.HasPayload())
	assert.Equal(t, 12, mpegts.PayloadOffset(&h, []byte{0x47, 0x5F, 0xFB, 0x3A, 0x07}))

	h = mpegts.ParseTsPacketHeader([]byte{0x47, 0x00, 0x11, 0x05})
	assert.Equal(t, uint16(0x11), h.Pid)
	assert.Equal(t, false, h.HasAdaptation())
	assert.Equal(t, false, h.HasPayload())
}

func TestCrc32(t *testing.T) {
	// 空PAT section，CRC来自一个真实的TS流
	pat := []byte{0x00, 0xB0, 0x09, 0x00, 0x01, 0xC1, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	crc := mpegts.CalcCrc32(0xffffffff, pat[:8])
	pat[8] = uint8(crc >> 24)
	pat[9] = uint8(crc >> 16)
	pat[10] = uint8(crc >> 8)
	pat[11] = uint8(crc)
	assert.Equal(t, true, mpegts.VerifyCrc32(pat))
	pat[4] = 0x02
	assert.Equal(t, false, mpegts.VerifyCrc32(pat))
	assert.Equal(t, false, mpegts.VerifyCrc32([]byte{1, 2}))

	// 标准PAT: program 1 -> PMT PID 0x1000
	std := []byte{0x00, 0xB0, 0x0D, 0x00, 0x01, 0xC1, 0x00, 0x00, 0x00, 0x01, 0xF0, 0x00, 0x2A, 0xB1, 0x04, 0xB2}
	assert.Equal(t, true, mpegts.VerifyCrc32(std))
}

func TestFeedPackets(t *testing.T) {
	r := &packetRecorder{}
	frame := mpegts.SectionFrame{Pid: 0x100, Cc: 0x0F, Raw: fakeSection(0xC7, 300)}
	ts := frame.Pack()
	assert.Equal(t, 2*mpegts.PacketSize, len(ts))

	// adaptation field + payload
	af := make([]byte, mpegts.PacketSize)
	af[0] = mpegts.SyncByte
	af[1] = 0x01
	af[2] = 0x00
	af[3] = 0x32
	af[4] = 10
	for i := 5; i < 15; i++ {
		af[i] = 0xFF
	}
	af[15] = 0xAB

	// adaptation field only
	afOnly := append([]byte(nil), af...)
	afOnly[3] = 0x23

	in := append(append([]byte(nil), ts...), af...)
	in = append(in, afOnly...)
	stat := mpegts.FeedPackets(in, 0, len(in), func(pid uint16) mpegts.IPacketStream {
		if pid == 0x100 {
			return r
		}
		return nil
	})
	assert.Equal(t, 4, stat.Packets)
	assert.Equal(t, 3, stat.Dispatched)
	assert.Equal(t, 1, stat.DropNoPayload)
	assert.Equal(t, []uint8{0, 1, 2}, r.ccs)
	assert.Equal(t, []bool{true, false, false}, r.pusis)
	assert.Equal(t, mpegts.PacketSize-4, len(r.payloads[0]))
	assert.Equal(t, mpegts.PacketSize-15, len(r.payloads[2]))
	assert.Equal(t, uint8(0xAB), r.payloads[2][0])

	// 参数非法
	stat = mpegts.FeedPackets(in, len(in), 10, nil)
	assert.Equal(t, 0, stat.Packets)
	stat = mpegts.FeedPackets(in, 0, mpegts.PacketSize-1, nil)
	assert.Equal(t, 0, stat.Packets)

	var total mpegts.FeedStat
	total.Add(mpegts.FeedStat{Packets: 1, DropSync: 1})
	total.Add(mpegts.FeedStat{Packets: 2, Dispatched: 2})
	assert.Equal(t, mpegts.FeedStat{Packets: 3, Dispatched: 2, DropSync: 1}, total)
}

func feedStream(s *mpegts.SectionStream, packet []byte) {
	h := mpegts.ParseTsPacketHeader(packet)
	s.FeedPacket(packet[mpegts.PayloadOffset(&h, packet):], h.Cc, h.PayloadUnitStart == 1)
}

func TestSectionStream_ContinuityLoss(t *testing.T) {
	r := &sectionRecorder{}
	s := mpegts.NewSectionStream(0x100, r, 4096)

	// a占4个packet，cc为0~3；b占2个packet，cc为5~6
	a := fakeSection(0xC7, 700)
	b := fakeSection(0xC8, 250)
	frameA := mpegts.SectionFrame{Pid: 0x100, Cc: 0x0F, Raw: a}
	frameB := mpegts.SectionFrame{Pid: 0x100, Cc: 0x04, Raw: b}
	pa := packets(frameA.Pack())
	pb := packets(frameB.Pack())
	assert.Equal(t, 4, len(pa))
	assert.Equal(t, 2, len(pb))

	for _, p := range [][]byte{pa[0], pa[1], pa[2], pb[0], pb[1]} {
		feedStream(s, p)
	}
	assert.Equal(t, [][]byte{b}, r.sections)
	assert.Equal(t, 0, s.Buffered())

	// a的后续packet不能单独解析
	feedStream(s, pa[3])
	assert.Equal(t, 1, len(r.sections))
	assert.Equal(t, 0, s.Buffered())
}

func TestSectionStream_PointerField(t *testing.T) {
	r := &sectionRecorder{}
	s := mpegts.NewSectionStream(0x100, r, 4096)

	// 第一个section跨两个packet，第二个section从第二个packet的pointer_field位置开始
	a := fakeSection(0xC7, 200)
	b := fakeSection(0xC8, 20)
	p0 := make([]byte, mpegts.PacketSize-4)
	p0[0] = 0
	n := copy(p0[1:], a)
	p1 := make([]byte, mpegts.PacketSize-4)
	remain := a[n:]
	p1[0] = uint8(len(remain))
	copy(p1[1:], remain)
	copy(p1[1+len(remain):], b)
	for i := 1 + len(remain) + len(b); i < len(p1); i++ {
		p1[i] = 0xFF
	}

	s.FeedPacket(p0, 0, true)
	assert.Equal(t, 0, len(r.sections))
	s.FeedPacket(p1, 1, true)
	assert.Equal(t, [][]byte{a, b}, r.sections)

	// 没有起始位置的数据被丢弃
	s.FeedPacket(p0[1:], 2, false)
	assert.Equal(t, 2, len(r.sections))
	assert.Equal(t, 0, s.Buffered())

	// 一个packet中有两个完整的section
	p2 := make([]byte, 1, mpegts.PacketSize-4)
	p2 = append(p2, b...)
	p2 = append(p2, b...)
	s.FeedPacket(p2, 3, true)
	assert.Equal(t, 4, len(r.sections))

	// pointer_field越界
	bad := make([]byte, 10)
	bad[0] = 20
	s.FeedPacket(bad, 4, true)
	assert.Equal(t, 4, len(r.sections))
	assert.Equal(t, 0, s.Buffered())
	s.FeedPacket(nil, 5, true)
	assert.Equal(t, 0, s.Buffered())

	// 前一个section只收到一部分，就开始了新的section（pointer_field为0），前一个被丢弃
	s.FeedPacket(p0, 6, true)
	assert.Equal(t, mpegts.PacketSize-5, s.Buffered())
	p3 := make([]byte, 1, mpegts.PacketSize-4)
	p3 = append(p3, b...)
	s.FeedPacket(p3, 7, true)
	assert.Equal(t, [][]byte{a, b, b, b, b}, r.sections)

	s.FeedPacket(p0, 8, true)
	s.Reset()
	assert.Equal(t, 0, s.Buffered())
	assert.Equal(t, uint16(0x100), s.Pid())
}

func TestExtractSections(t *testing.T) {
	a := fakeSection(0xC7, 10)
	b := fakeSection(0xC8, 10)

	var got [][]byte
	in := append(append([]byte(nil), a...), b[:5]...)
	consumed, err := mpegts.ExtractSections(in, 4096, func(section []byte) {
		got = append(got, section)
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, len(a), consumed)
	assert.Equal(t, [][]byte{a}, got)

	// 填充
	in = append(append([]byte(nil), a...), 0xFF, 0xFF, 0x00)
	got = nil
	consumed, err = mpegts.ExtractSections(in, 4096, func(section []byte) {
		got = append(got, section)
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, len(in), consumed)
	assert.Equal(t, 1, len(got))

	// 超过最大长度
	big := fakeSection(0xC7, 2000)
	_, err = mpegts.ExtractSections(big, 1024, func(section []byte) {})
	assert.Equal(t, true, err != nil)

	r := &sectionRecorder{}
	s := mpegts.NewSectionStream(0x100, r, 1024)
	for i, p := range packets((&mpegts.SectionFrame{Pid: 0x100, Cc: 0x0F, Raw: big}).Pack()) {
		feedStream(s, p)
		if i == 0 {
			assert.Equal(t, 0, s.Buffered())
		}
	}
	assert.Equal(t, 0, len(r.sections))
}

func TestSectionFrame_Pack(t *testing.T) {
	frame := mpegts.SectionFrame{Pid: 0x1FFB, Cc: 0x0E, Raw: fakeSection(0xC8, 500)}
	ts := frame.Pack()
	ps := packets(ts)
	assert.Equal(t, 3, len(ps))
	assert.Equal(t, uint8(0x11), frame.Cc)

	var ccs []uint8
	for i, p := range ps {
		h := mpegts.ParseTsPacketHeader(p)
		assert.Equal(t, uint16(0x1FFB), h.Pid)
		assert.Equal(t, i == 0, h.PayloadUnitStart == 1)
		ccs = append(ccs, h.Cc)
	}
	assert.Equal(t, []uint8{0x0F, 0x00, 0x01}, ccs)
	assert.Equal(t, uint8(0xFF), ps[2][mpegts.PacketSize-1])
}

// TestSectionFrame_Astits 打包的结果可以被第三方的demuxer解析
func TestSectionFrame_Astits(t *testing.T) {
	w := innertest.NewTsWriter()
	var ts []byte
	ts = append(ts, w.Pack(mpegts.PidPat, innertest.PackPat(1, 0, []psip.PatItem{{ProgramNumber: 3, PmtPid: 0x30}}))...)
	ts = append(ts, w.Pack(0x30, innertest.PackPmt(3, 0x31, 0, []psip.PmtItem{
		{StreamType: 0x1B, EsPid: 0x31},
		{StreamType: 0x0F, EsPid: 0x32, LanguageCode: "eng"},
	}))...)

	dmx := astits.NewDemuxer(context.Background(), bytes.NewReader(ts))
	var pat *astits.PATData
	var pmt *astits.PMTData
	for i := 0; i < 16; i++ {
		d, err := dmx.NextData()
		if err != nil {
			assert.Equal(t, astits.ErrNoMorePackets, err)
			break
		}
		if d.PAT != nil {
			pat = d.PAT
		}
		if d.PMT != nil {
			pmt = d.PMT
		}
	}
	assert.IsNotNil(t, pat)
	assert.Equal(t, 1, len(pat.Programs))
	assert.Equal(t, uint16(3), pat.Programs[0].ProgramNumber)
	assert.Equal(t, uint16(0x30), pat.Programs[0].ProgramMapID)
	assert.IsNotNil(t, pmt)
	assert.Equal(t, uint16(3), pmt.ProgramNumber)
	assert.Equal(t, uint16(0x31), pmt.PCRPID)
	assert.Equal(t, 2, len(pmt.ElementaryStreams))
	assert.Equal(t, astits.StreamTypeH264Video, pmt.ElementaryStreams[0].StreamType)
	assert.Equal(t, uint16(0x32), pmt.ElementaryStreams[1].ElementaryPID)
}

func TestFileWriter(t *testing.T) {
	var fw mpegts.FileWriter
	assert.Equal(t, true, fw.Write(make([]byte, mpegts.PacketSize)) != nil)
}
