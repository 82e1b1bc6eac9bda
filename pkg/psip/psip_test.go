// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psip_test

import (
	"testing"

	"github.com/q191201771/naza/pkg/assert"
	"github.com/q191201771/tunerpsi/pkg/base"
	"github.com/q191201771/tunerpsi/pkg/innertest"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
	"github.com/q191201771/tunerpsi/pkg/psip"
)

func TestParsePat(t *testing.T) {
	section := innertest.PackPat(1, 0, []psip.PatItem{
		{ProgramNumber: 0, PmtPid: 0x10},
		{ProgramNumber: 1, PmtPid: 0x30},
		{ProgramNumber: 3, PmtPid: 0x1FF0},
	})
	items, err := psip.ParsePat(section)
	assert.Equal(t, nil, err)
	assert.Equal(t, []psip.PatItem{
		{ProgramNumber: 1, PmtPid: 0x30},
		{ProgramNumber: 3, PmtPid: 0x1FF0},
	}, items)

	// 表类型不对
	_, err = psip.ParsePat(innertest.PackPmt(1, 0x100, 0, nil))
	assert.Equal(t, true, err != nil)

	// 长度与section_length不一致
	_, err = psip.ParsePat(section[:len(section)-1])
	assert.Equal(t, true, err != nil)
}

func TestParsePmt(t *testing.T) {
	section := innertest.PackPmt(7, 0x101, 3, []psip.PmtItem{
		{StreamType: 0x02, EsPid: 0x101},
		{StreamType: 0x81, EsPid: 0x102, LanguageCode: "spa"},
	})
	programNumber, items, err := psip.ParsePmt(section)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(7), programNumber)
	assert.Equal(t, []psip.PmtItem{
		{StreamType: 0x02, EsPid: 0x101},
		{StreamType: 0x81, EsPid: 0x102, LanguageCode: "spa"},
	}, items)

	h, err := psip.ParseSectionHeader(section)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint8(3), h.VersionNumber)
	assert.Equal(t, uint8(1), h.CurrentNextIndicator)
	assert.Equal(t, true, mpegts.VerifyCrc32(section))
}

func TestParseMgt(t *testing.T) {
	in := []psip.MgtItem{
		{TableType: psip.MgtTableTypeTvctCurrent, TablePid: 0x1FFB, VersionNumber: 1, NumberBytes: 100},
		{TableType: psip.MgtTableTypeChannelEtt, TablePid: 0x1D00, VersionNumber: 2, NumberBytes: 200},
		{TableType: 0x0100, TablePid: 0x1D01, VersionNumber: 3, NumberBytes: 300},
		{TableType: 0x0201, TablePid: 0x1D02, VersionNumber: 4, NumberBytes: 400},
		{TableType: 0x0301, TablePid: 0x1D03, VersionNumber: 5, NumberBytes: 500},
	}
	items, err := psip.ParseMgt(innertest.PackMgt(9, in))
	assert.Equal(t, nil, err)
	assert.Equal(t, in, items)

	assert.Equal(t, false, items[0].IsEitTableType())
	assert.Equal(t, false, items[0].IsEttTableType())
	assert.Equal(t, true, items[1].IsEttTableType())
	assert.Equal(t, true, items[2].IsEitTableType())
	assert.Equal(t, true, items[3].IsEttTableType())
	assert.Equal(t, false, items[4].IsEitTableType())
	assert.Equal(t, false, items[4].IsEttTableType())
}

func TestParseVct(t *testing.T) {
	in := []psip.VctItem{
		{
			ShortName:          "KQED",
			LongName:           "KQED Public Television",
			MajorChannelNumber: 9,
			MinorChannelNumber: 1,
			ModulationMode:     0x04,
			CarrierFrequency:   0,
			ChannelTsid:        0x0bb9,
			ProgramNumber:      3,
			EtmLocation:        1,
			AccessControlled:   false,
			Hidden:             false,
			HideGuide:          false,
			ServiceType:        0x02,
			SourceId:           0x0103,
		},
		{
			ShortName:          "KQEDHD7",
			MajorChannelNumber: 1000,
			MinorChannelNumber: 999,
			ModulationMode:     0x04,
			ChannelTsid:        0x0bb9,
			ProgramNumber:      4,
			AccessControlled:   true,
			Hidden:             true,
			HideGuide:          true,
			ServiceType:        0x03,
			SourceId:           0x0104,
		},
	}
	section := innertest.PackVct(mpegts.TsPsiIdTvct, 0x0bb9, 2, 0, 1, in)
	tsid, items, err := psip.ParseVct(section)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(0x0bb9), tsid)
	assert.Equal(t, in, items)
	assert.Equal(t, "9-1", items[0].DisplayNumber())

	section = innertest.PackVct(mpegts.TsPsiIdCvct, 0x0bb9, 2, 0, 0, in[:1])
	_, items, err = psip.ParseVct(section)
	assert.Equal(t, nil, err)
	assert.Equal(t, in[:1], items)
}

func TestParseAtscEit(t *testing.T) {
	in := []psip.EitItem{
		{EventId: 1, StartTime: 1700000000, LengthInSeconds: 1800, TitleText: "News", LanguageCode: "eng"},
		{EventId: 0x3FFF, StartTime: 1700001800, LengthInSeconds: 0xFFFFF, TitleText: "Movie", LanguageCode: "fra"},
	}
	sourceId, items, err := psip.ParseAtscEit(innertest.PackAtscEit(0x0103, 0, in))
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(0x0103), sourceId)
	assert.Equal(t, in, items)
}

func TestParseDvbEit(t *testing.T) {
	in := []psip.EitItem{
		{EventId: 0x1234, StartTime: 1700000000, LengthInSeconds: 5400, TitleText: "Film", LanguageCode: "deu", ShortText: "Drama"},
	}
	serviceId, items, err := psip.ParseDvbEit(innertest.PackDvbEit(mpegts.TsPsiIdEitPfActual, 0x0201, 0, in))
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(0x0201), serviceId)
	assert.Equal(t, in, items)

	// 2023-11-14 22:13:20 UTC
	assert.Equal(t, int64(1700000000), psip.DvbTimeToUnix(innertest.DvbTime(1700000000)))
	assert.Equal(t, int64(0), psip.DvbTimeToUnix([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}))
	// <EN 300 468> Annex C的例子: 93/10/13 12:45:00
	assert.Equal(t, int64(750516300), psip.DvbTimeToUnix([]byte{0xC0, 0x79, 0x12, 0x45, 0x00}))
}

func TestParseEtt(t *testing.T) {
	item, etmId, err := psip.ParseEtt(innertest.PackEtt(0x0103, 0, 0, "channel desc"))
	assert.Equal(t, nil, err)
	assert.Equal(t, uint32(0x01030000), etmId)
	assert.Equal(t, psip.EttItem{SourceId: 0x0103, EventId: 0, Text: "channel desc"}, item)

	item, etmId, err = psip.ParseEtt(innertest.PackEtt(0x0103, 2, 0, "event desc"))
	assert.Equal(t, nil, err)
	assert.Equal(t, uint32(0x0103000A), etmId)
	assert.Equal(t, psip.EttItem{SourceId: 0x0103, EventId: 2, Text: "event desc"}, item)
}

func TestParseSdt(t *testing.T) {
	in := []psip.SdtItem{
		{ServiceId: 0x0201, ServiceType: 0x01, ServiceProviderName: "BBC", ServiceName: "BBC ONE",
			EitScheduleFlag: true, EitPresentFollowing: true, RunningStatus: 4},
		{ServiceId: 0x0202, ServiceType: 0x02, ServiceProviderName: "BBC", ServiceName: "Radio 4",
			RunningStatus: 1, FreeCaMode: true},
	}
	tsid, items, err := psip.ParseSdt(innertest.PackSdt(0x1004, 0x233a, 0, in))
	assert.Equal(t, nil, err)
	assert.Equal(t, uint16(0x1004), tsid)
	assert.Equal(t, in, items)
}

func TestParseSectionHeader(t *testing.T) {
	_, err := psip.ParseSectionHeader([]byte{0, 0xB0})
	assert.Equal(t, true, err != nil)

	section := innertest.PackPat(1, 0, nil)
	section[1] &= 0x7F
	_, err = psip.ParseSectionHeader(section)
	assert.Equal(t, base.ErrPsipSyntax, err)
}

func TestDecodeMultipleString(t *testing.T) {
	assert.Equal(t, "hello", psip.DecodeMultipleString(innertest.MultipleString("eng", "hello")))
	assert.Equal(t, "", psip.DecodeMultipleString(nil))

	// 两个字符串，第二个由两个segment组成，分别是UTF-16和mode 0x01(Unicode page 0x01)
	b := []byte{2}
	b = append(b, 'e', 'n', 'g', 1, 0, 0, 2, 'a', 'b')
	b = append(b, 'f', 'r', 'a', 2, 0, 0x3F, 4, 0x00, 0xe9, 0x00, 't', 0, 0x01, 1, 0x41)
	strs := psip.ParseMultipleString(b)
	assert.Equal(t, []psip.LangString{
		{LanguageCode: "eng", Text: "ab"},
		{LanguageCode: "fra", Text: "étŁ"},
	}, strs)

	// 压缩的segment被丢弃，截断的数据返回已经解析出的部分
	b = []byte{2, 'e', 'n', 'g', 1, 1, 0, 2, 0xAA, 0xBB, 'f', 'r', 'a', 1, 0, 0}
	strs = psip.ParseMultipleString(b)
	assert.Equal(t, []psip.LangString{{LanguageCode: "eng", Text: ""}}, strs)
}

func TestDecodeDvbString(t *testing.T) {
	assert.Equal(t, "BBC ONE", psip.DecodeDvbString([]byte("BBC ONE")))
	assert.Equal(t, "", psip.DecodeDvbString(nil))
	// ISO 8859-5
	assert.Equal(t, "Да", psip.DecodeDvbString([]byte{0x01, 0xB4, 0xD0}))
	// 0x10 0x00 0x02 -> ISO 8859-2
	assert.Equal(t, "Łódź", psip.DecodeDvbString([]byte{0x10, 0x00, 0x02, 0xA3, 0xF3, 0x64, 0xBC}))
	// UTF-16BE
	assert.Equal(t, "中文", psip.DecodeDvbString([]byte{0x11, 0x4E, 0x2D, 0x65, 0x87}))
	// UTF-8
	assert.Equal(t, "中文", psip.DecodeDvbString(append([]byte{0x15}, "中文"...)))
	// 控制码: 0x86/0x87强调开关被去掉，0x8A换行
	assert.Equal(t, "a\nb", psip.DecodeDvbString([]byte{0x86, 'a', 0x87, 0x8A, 'b'}))
}

// ---------------------------------------------------------------------------------------------------------------------

type sectionRecorder struct {
	pats  [][]psip.PatItem
	pmts  map[uint16][]psip.PmtItem
	mgts  [][]psip.MgtItem
	vcts  []psip.VctSectionInfo
	eits  []uint16
	etts  []psip.EttItem
	sdts  [][]psip.SdtItem
	total int
}

func newSectionRecorder() *sectionRecorder {
	return &sectionRecorder{pmts: make(map[uint16][]psip.PmtItem)}
}

func (r *sectionRecorder) OnPatParsed(items []psip.PatItem) {
	r.pats = append(r.pats, items)
	r.total++
}

func (r *sectionRecorder) OnPmtParsed(programNumber uint16, items []psip.PmtItem) {
	r.pmts[programNumber] = items
	r.total++
}

func (r *sectionRecorder) OnMgtParsed(items []psip.MgtItem) {
	r.mgts = append(r.mgts, items)
	r.total++
}

func (r *sectionRecorder) OnVctParsed(items []psip.VctItem, info psip.VctSectionInfo) {
	r.vcts = append(r.vcts, info)
	r.total++
}

func (r *sectionRecorder) OnEitParsed(pid uint16, sourceId uint16, items []psip.EitItem) {
	r.eits = append(r.eits, sourceId)
	r.total++
}

func (r *sectionRecorder) OnEttParsed(pid uint16, items []psip.EttItem) {
	r.etts = append(r.etts, items...)
	r.total++
}

func (r *sectionRecorder) OnSdtParsed(tsid uint16, items []psip.SdtItem) {
	r.sdts = append(r.sdts, items)
	r.total++
}

func TestSectionParser_Version(t *testing.T) {
	r := newSectionRecorder()
	sp := psip.NewSectionParser(0, r, psip.SectionParserOption{VerifyCrc: true})

	pat := innertest.PackPat(1, 0, []psip.PatItem{{ProgramNumber: 1, PmtPid: 0x30}})
	sp.OnSection(0, pat)
	sp.OnSection(0, pat)
	assert.Equal(t, 1, len(r.pats))
	assert.Equal(t, uint64(1), sp.GetStat().Duplicate)

	// 版本号变化
	sp.OnSection(0, innertest.PackPat(1, 1, []psip.PatItem{{ProgramNumber: 2, PmtPid: 0x31}}))
	assert.Equal(t, 2, len(r.pats))
	assert.Equal(t, []psip.PatItem{{ProgramNumber: 2, PmtPid: 0x31}}, r.pats[1])

	sp.ResetVersionNumbers()
	sp.OnSection(0, innertest.PackPat(1, 1, []psip.PatItem{{ProgramNumber: 2, PmtPid: 0x31}}))
	assert.Equal(t, 3, len(r.pats))

	// current_next_indicator为0
	next := innertest.PackPat(1, 2, nil)
	next[5] &= 0xFE
	sp.OnSection(0, fixCrc(next))
	assert.Equal(t, 3, len(r.pats))
}

func TestSectionParser_Crc(t *testing.T) {
	r := newSectionRecorder()
	sp := psip.NewSectionParser(0, r, psip.SectionParserOption{VerifyCrc: true})
	pat := innertest.PackPat(1, 0, []psip.PatItem{{ProgramNumber: 1, PmtPid: 0x30}})
	pat[len(pat)-1] ^= 0xFF
	sp.OnSection(0, pat)
	assert.Equal(t, 0, r.total)
	assert.Equal(t, uint64(1), sp.GetStat().CrcError)

	sp = psip.NewSectionParser(0, r, psip.SectionParserOption{VerifyCrc: false})
	sp.OnSection(0, pat)
	assert.Equal(t, 1, r.total)
}

func TestSectionParser_Ett(t *testing.T) {
	r := newSectionRecorder()
	sp := psip.NewSectionParser(0x1D00, r, psip.SectionParserOption{VerifyCrc: true})

	// table_id_extension和section_number相同，只有ETM_id不同，不能被当成重复的section
	sp.OnSection(0x1D00, innertest.PackEtt(0x0103, 0, 0, "a"))
	sp.OnSection(0x1D00, innertest.PackEtt(0x0103, 2, 0, "b"))
	sp.OnSection(0x1D00, innertest.PackEtt(0x0103, 2, 0, "b"))
	assert.Equal(t, []psip.EttItem{
		{SourceId: 0x0103, EventId: 0, Text: "a"},
		{SourceId: 0x0103, EventId: 2, Text: "b"},
	}, r.etts)
}

func TestSectionParser_Mode(t *testing.T) {
	eit := innertest.PackDvbEit(mpegts.TsPsiIdEitScheduleStart, 0x0201, 0, []psip.EitItem{{EventId: 1, StartTime: 1700000000}})
	eitOther := innertest.PackDvbEit(mpegts.TsPsiIdEitPfOther, 0x0201, 0, []psip.EitItem{{EventId: 1, StartTime: 1700000000}})
	sdt := innertest.PackSdt(1, 1, 0, []psip.SdtItem{{ServiceId: 0x0201}})
	vct := innertest.PackVct(mpegts.TsPsiIdTvct, 1, 0, 0, 0, []psip.VctItem{{ProgramNumber: 1, SourceId: 1}})

	// ATSC模式下DVB的表被忽略
	r := newSectionRecorder()
	sp := psip.NewSectionParser(0x12, r, psip.SectionParserOption{VerifyCrc: true})
	sp.OnSection(0x12, eit)
	sp.OnSection(0x12, sdt)
	sp.OnSection(0x12, vct)
	assert.Equal(t, 1, r.total)
	assert.Equal(t, 1, len(r.vcts))

	r = newSectionRecorder()
	sp = psip.NewSectionParser(0x12, r, psip.SectionParserOption{IsDvb: true, VerifyCrc: true})
	sp.OnSection(0x12, eit)
	sp.OnSection(0x12, eitOther)
	sp.OnSection(0x12, sdt)
	sp.OnSection(0x12, vct)
	assert.Equal(t, 2, r.total)
	assert.Equal(t, []uint16{0x0201}, r.eits)
	assert.Equal(t, 1, len(r.sdts))
}

func fixCrc(section []byte) []byte {
	crc := mpegts.CalcCrc32(0xffffffff, section[:len(section)-4])
	section[len(section)-4] = uint8(crc >> 24)
	section[len(section)-3] = uint8(crc >> 16)
	section[len(section)-2] = uint8(crc >> 8)
	section[len(section)-1] = uint8(crc)
	return section
}
