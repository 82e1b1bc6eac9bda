// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psip

import "fmt"

// PatItem program_number -> program_map_PID
type PatItem struct {
	ProgramNumber uint16
	PmtPid        uint16
}

// PmtItem 节目中的一路elementary stream
type PmtItem struct {
	StreamType   uint8
	EsPid        uint16
	LanguageCode string // ISO_639_language_descriptor，没有时为空
}

// MgtItem MGT中的一个表
type MgtItem struct {
	TableType     uint16
	TablePid      uint16
	VersionNumber uint8
	NumberBytes   uint32
}

// MGT table_type <A/65> <Table 6.3>
const (
	MgtTableTypeTvctCurrent = 0x0000
	MgtTableTypeTvctNext    = 0x0001
	MgtTableTypeCvctCurrent = 0x0002
	MgtTableTypeCvctNext    = 0x0003
	MgtTableTypeChannelEtt  = 0x0004
	MgtTableTypeEitStart    = 0x0100 // EIT-0
	MgtTableTypeEitEnd      = 0x017F // EIT-127
	MgtTableTypeEttStart    = 0x0200 // event ETT-0
	MgtTableTypeEttEnd      = 0x027F // event ETT-127
)

func (item *MgtItem) IsEitTableType() bool {
	return item.TableType >= MgtTableTypeEitStart && item.TableType <= MgtTableTypeEitEnd
}

func (item *MgtItem) IsEttTableType() bool {
	return item.TableType == MgtTableTypeChannelEtt ||
		(item.TableType >= MgtTableTypeEttStart && item.TableType <= MgtTableTypeEttEnd)
}

// VctItem TVCT/CVCT中的一个虚拟频道
//
// 按source_id和program_number双重索引。Description来自channel ETT，可能晚于VCT到达。
type VctItem struct {
	ShortName          string
	LongName           string // extended_channel_name_descriptor
	MajorChannelNumber uint16
	MinorChannelNumber uint16
	ModulationMode     uint8
	CarrierFrequency   uint32
	ChannelTsid        uint16
	ProgramNumber      uint16
	EtmLocation        uint8
	AccessControlled   bool
	Hidden             bool
	HideGuide          bool
	ServiceType        uint8
	SourceId           uint16
	Description        string
}

func (item *VctItem) DisplayNumber() string {
	if item.MinorChannelNumber == 0 {
		return fmt.Sprintf("%d", item.MajorChannelNumber)
	}
	return fmt.Sprintf("%d-%d", item.MajorChannelNumber, item.MinorChannelNumber)
}

// EitItem 一个节目（event）
type EitItem struct {
	EventId         uint16
	StartTime       int64 // unix秒
	LengthInSeconds uint32
	TitleText       string
	LanguageCode    string
	ShortText       string // DVB short_event_descriptor中的text
	Description     string // 来自ETT
}

// EttItem ETT中的扩展文本
//
// EventId为0表示这是频道级别的描述（channel ETT）
type EttItem struct {
	SourceId uint16
	EventId  uint16
	Text     string
}

// SdtItem DVB SDT中的一个service，ServiceId即program_number
type SdtItem struct {
	ServiceId           uint16
	ServiceType         uint8
	ServiceProviderName string
	ServiceName         string
	EitScheduleFlag     bool
	EitPresentFollowing bool
	RunningStatus       uint8
	FreeCaMode          bool
}
