// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package innertest 构造测试用的section以及TS流，供各个package的单元测试使用
package innertest

import (
	"github.com/q191201771/naza/pkg/bele"
	"github.com/q191201771/tunerpsi/pkg/mpegts"
	"github.com/q191201771/tunerpsi/pkg/psip"
)

// PackSection 填充long form section header以及CRC_32
func PackSection(tableId uint8, tableIdExtension uint16, version, sectionNumber, lastSectionNumber uint8, body []byte) []byte {
	sectionLength := mpegts.SectionLongHeaderSize - mpegts.SectionShortHeaderSize + len(body) + mpegts.SectionCrcSize
	b := make([]byte, mpegts.SectionShortHeaderSize+sectionLength)
	b[0] = tableId
	b[1] = 0xB0 | uint8(sectionLength>>8)&0x0F
	b[2] = uint8(sectionLength)
	bele.BePutUint16(b[3:], tableIdExtension)
	b[5] = 0xC1 | (version&0x1F)<<1
	b[6] = sectionNumber
	b[7] = lastSectionNumber
	copy(b[mpegts.SectionLongHeaderSize:], body)
	crc := mpegts.CalcCrc32(0xffffffff, b[:len(b)-mpegts.SectionCrcSize])
	bele.BePutUint32(b[len(b)-mpegts.SectionCrcSize:], crc)
	return b
}

func PackPat(tsid uint16, version uint8, items []psip.PatItem) []byte {
	var body []byte
	for _, item := range items {
		body = appendUint16(body, item.ProgramNumber)
		body = appendUint16(body, 0xE000|item.PmtPid)
	}
	return PackSection(mpegts.TsPsiIdPas, tsid, version, 0, 0, body)
}

func PackPmt(programNumber uint16, pcrPid uint16, version uint8, items []psip.PmtItem) []byte {
	var body []byte
	body = appendUint16(body, 0xE000|pcrPid)
	body = appendUint16(body, 0xF000)
	for _, item := range items {
		var esInfo []byte
		if item.LanguageCode != "" {
			esInfo = append(esInfo, psip.DescriptorTagIso639Language, 4)
			esInfo = append(esInfo, item.LanguageCode[:3]...)
			esInfo = append(esInfo, 0)
		}
		body = append(body, item.StreamType)
		body = appendUint16(body, 0xE000|item.EsPid)
		body = appendUint16(body, 0xF000|uint16(len(esInfo)))
		body = append(body, esInfo...)
	}
	return PackSection(mpegts.TsPsiIdPms, programNumber, version, 0, 0, body)
}

func PackMgt(version uint8, items []psip.MgtItem) []byte {
	body := []byte{0}
	body = appendUint16(body, uint16(len(items)))
	for _, item := range items {
		body = appendUint16(body, item.TableType)
		body = appendUint16(body, 0xE000|item.TablePid)
		body = append(body, 0xE0|item.VersionNumber&0x1F)
		body = appendUint32(body, item.NumberBytes)
		body = appendUint16(body, 0xF000)
	}
	body = appendUint16(body, 0xF000)
	return PackSection(mpegts.TsPsiIdMgt, 0, version, 0, 0, body)
}

// PackVct tableId为 mpegts.TsPsiIdTvct 或 mpegts.TsPsiIdCvct
func PackVct(tableId uint8, tsid uint16, version, sectionNumber, lastSectionNumber uint8, items []psip.VctItem) []byte {
	body := []byte{0, uint8(len(items))}
	for _, item := range items {
		body = append(body, Utf16ShortName(item.ShortName)...)

		var descriptors []byte
		if item.LongName != "" {
			mss := MultipleString("eng", item.LongName)
			descriptors = append(descriptors, psip.DescriptorTagExtendedChannelName, uint8(len(mss)))
			descriptors = append(descriptors, mss...)
		}

		body = append(body,
			0xF0|uint8(item.MajorChannelNumber>>6)&0x0F,
			uint8(item.MajorChannelNumber&0x3F)<<2|uint8(item.MinorChannelNumber>>8)&0x03,
			uint8(item.MinorChannelNumber),
			item.ModulationMode)
		body = appendUint32(body, item.CarrierFrequency)
		body = appendUint16(body, item.ChannelTsid)
		body = appendUint16(body, item.ProgramNumber)
		flags := (item.EtmLocation & 0x03) << 6
		if item.AccessControlled {
			flags |= 0x20
		}
		if item.Hidden {
			flags |= 0x10
		}
		flags |= 0x0C
		if item.HideGuide {
			flags |= 0x02
		}
		flags |= 0x01
		body = append(body, flags, 0xC0|item.ServiceType&0x3F)
		body = appendUint16(body, item.SourceId)
		body = appendUint16(body, 0xFC00|uint16(len(descriptors)))
		body = append(body, descriptors...)
	}
	body = appendUint16(body, 0xFC00)
	return PackSection(tableId, tsid, version, sectionNumber, lastSectionNumber, body)
}

// PackAtscEit EitItem.StartTime为unix秒
func PackAtscEit(sourceId uint16, version uint8, items []psip.EitItem) []byte {
	body := []byte{0, uint8(len(items))}
	for _, item := range items {
		body = appendUint16(body, 0xC000|item.EventId&0x3FFF)
		body = appendUint32(body, uint32(item.StartTime-psip.GpsEpochUnixSeconds))
		body = append(body,
			0xC0|uint8(item.LengthInSeconds>>16)&0x0F,
			uint8(item.LengthInSeconds>>8),
			uint8(item.LengthInSeconds))
		lang := item.LanguageCode
		if lang == "" {
			lang = "eng"
		}
		title := MultipleString(lang, item.TitleText)
		body = append(body, uint8(len(title)))
		body = append(body, title...)
		body = appendUint16(body, 0xF000)
	}
	return PackSection(mpegts.TsPsiIdEit, sourceId, version, 0, 0, body)
}

// PackEtt eventId为0时生成channel ETM
func PackEtt(sourceId, eventId uint16, version uint8, text string) []byte {
	etmId := uint32(sourceId) << 16
	if eventId != 0 {
		etmId |= uint32(eventId&0x3FFF)<<2 | 0x2
	}
	body := []byte{0}
	body = appendUint32(body, etmId)
	body = append(body, MultipleString("eng", text)...)
	return PackSection(mpegts.TsPsiIdEtt, 0, version, 0, 0, body)
}

func PackSdt(tsid, onid uint16, version uint8, items []psip.SdtItem) []byte {
	var body []byte
	body = appendUint16(body, onid)
	body = append(body, 0xFF)
	for _, item := range items {
		d := []byte{psip.DescriptorTagService, uint8(3 + len(item.ServiceProviderName) + len(item.ServiceName)), item.ServiceType}
		d = append(d, uint8(len(item.ServiceProviderName)))
		d = append(d, item.ServiceProviderName...)
		d = append(d, uint8(len(item.ServiceName)))
		d = append(d, item.ServiceName...)

		body = appendUint16(body, item.ServiceId)
		flags := uint8(0xFC)
		if item.EitScheduleFlag {
			flags |= 0x02
		}
		if item.EitPresentFollowing {
			flags |= 0x01
		}
		body = append(body, flags)
		dl := uint16(item.RunningStatus&0x07)<<13 | uint16(len(d))
		if item.FreeCaMode {
			dl |= 0x1000
		}
		body = appendUint16(body, dl)
		body = append(body, d...)
	}
	return PackSection(mpegts.TsPsiIdSdtActual, tsid, version, 0, 0, body)
}

// PackDvbEit EitItem.StartTime为unix秒，字符串只支持ASCII
func PackDvbEit(tableId uint8, serviceId uint16, version uint8, items []psip.EitItem) []byte {
	body := []byte{0, 1, 0, 1, 0, tableId}
	for _, item := range items {
		lang := item.LanguageCode
		if lang == "" {
			lang = "eng"
		}
		d := []byte{psip.DescriptorTagShortEvent, uint8(5 + len(item.TitleText) + len(item.ShortText))}
		d = append(d, lang[:3]...)
		d = append(d, uint8(len(item.TitleText)))
		d = append(d, item.TitleText...)
		d = append(d, uint8(len(item.ShortText)))
		d = append(d, item.ShortText...)

		body = appendUint16(body, item.EventId)
		body = append(body, DvbTime(item.StartTime)...)
		body = append(body, bcdSeconds(item.LengthInSeconds)...)
		body = appendUint16(body, 0x8000|uint16(len(d)))
		body = append(body, d...)
	}
	return PackSection(tableId, serviceId, version, 0, 0, body)
}

// MultipleString 只包含一个字符串、一个segment的multiple_string_structure，mode为0，text只支持Latin-1
func MultipleString(lang, text string) []byte {
	b := []byte{1}
	b = append(b, lang[:3]...)
	b = append(b, 1, 0, 0, uint8(len(text)))
	b = append(b, text...)
	return b
}

// Utf16ShortName VCT的short_name，7个UTF-16字符，不足的补0
func Utf16ShortName(name string) []byte {
	b := make([]byte, 14)
	for i, r := range []rune(name) {
		if i == 7 {
			break
		}
		bele.BePutUint16(b[i*2:], uint16(r))
	}
	return b
}

// DvbTime unix秒转换为MJD + BCD
func DvbTime(unix int64) []byte {
	b := make([]byte, 2, 5)
	bele.BePutUint16(b, uint16(unix/86400+40587))
	return append(b, bcdSeconds(uint32(unix%86400))...)
}

func bcdSeconds(v uint32) []byte {
	return []byte{toBcd(uint8(v / 3600)), toBcd(uint8(v % 3600 / 60)), toBcd(uint8(v % 60))}
}

func toBcd(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, uint8(v>>8), uint8(v))
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v))
}

// ---------------------------------------------------------------------------------------------------------------------

// TsWriter 把section打包成TS packet，按PID维护continuity_counter，每个PID的第一个packet的cc为0
type TsWriter struct {
	ccs map[uint16]uint8
}

func NewTsWriter() *TsWriter {
	return &TsWriter{
		ccs: make(map[uint16]uint8),
	}
}

func (w *TsWriter) Pack(pid uint16, section []byte) []byte {
	cc, ok := w.ccs[pid]
	if !ok {
		cc = 0x0F
	}
	frame := mpegts.SectionFrame{
		Pid: pid,
		Cc:  cc,
		Raw: section,
	}
	out := frame.Pack()
	w.ccs[pid] = frame.Cc
	return out
}
