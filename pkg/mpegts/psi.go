// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

const (
	PacketSize         = 188
	SyncByte           = 0x47
	TsPacketHeaderSize = 4
)

// 固定的PID
const (
	PidPat        = 0x0000
	PidCat        = 0x0001
	PidNit        = 0x0010
	PidSdt        = 0x0011 // DVB SDT/BAT
	PidEit        = 0x0012 // DVB EIT
	PidAtscSiBase = 0x1FFB // ATSC PSIP base PID, MGT/TVCT/CVCT/STT/RRT
	PidNull       = 0x1FFF
)

// PsiId
const (
	TsPsiIdPas            = 0x00 // program_association_section
	TsPsiIdCas            = 0x01 // conditional_access_section (CA_section)
	TsPsiIdPms            = 0x02 // TS_program_map_section
	TsPsiIdDs             = 0x03 // TS_description_section
	TsPsiIdIso138181Start = 0x06 // ITU-T Rec. H.222.0 | ISO/IEC 13818-1 reserved
	TsPsiIdIso138181End   = 0x37
	TsPsiIdUserStart      = 0x40 // User private
	TsPsiIdUserEnd        = 0xFE
	TsPsiIdForbidden      = 0xFF // forbidden, 同时也是section后的填充字节
)

// DVB SI table_id <EN 300 468> <5.1.3>
const (
	TsPsiIdSdtActual             = 0x42 // service_description_section - actual_transport_stream
	TsPsiIdSdtOther              = 0x46
	TsPsiIdEitPfActual           = 0x4E // event_information_section - actual_transport_stream, present/following
	TsPsiIdEitPfOther            = 0x4F
	TsPsiIdEitScheduleStart      = 0x50 // event_information_section - actual_transport_stream, schedule
	TsPsiIdEitScheduleEnd        = 0x5F
	TsPsiIdEitScheduleOtherStart = 0x60
	TsPsiIdEitScheduleOtherEnd   = 0x6F
)

// ATSC PSIP table_id <A/65> <Table 4.1>
const (
	TsPsiIdMgt  = 0xC7 // master_guide_table_section
	TsPsiIdTvct = 0xC8 // terrestrial_virtual_channel_table_section
	TsPsiIdCvct = 0xC9 // cable_virtual_channel_table_section
	TsPsiIdRrt  = 0xCA
	TsPsiIdEit  = 0xCB // event_information_table_section
	TsPsiIdEtt  = 0xCC // extended_text_table_section
	TsPsiIdStt  = 0xCD
)

// section header中通用的长度
const (
	// table_id(8) + section_syntax_indicator(1) + private_indicator(1) + reserved(2) + section_length(12)
	SectionShortHeaderSize = 3

	// 再加上 table_id_extension(16) + reserved(2) + version_number(5) + current_next_indicator(1) +
	// section_number(8) + last_section_number(8)
	SectionLongHeaderSize = 8

	SectionCrcSize = 4
)

// SectionLength 读取section_length，调用方保证b至少3字节
func SectionLength(b []byte) int {
	return int(b[1]&0x0F)<<8 | int(b[2])
}
