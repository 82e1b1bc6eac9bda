// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psip

const (
	DescriptorTagIso639Language      = 0x0a
	DescriptorTagService             = 0x48
	DescriptorTagShortEvent          = 0x4d
	DescriptorTagExtendedEvent       = 0x4e
	DescriptorTagAc3Audio            = 0x81 // ATSC A/52
	DescriptorTagCaptionService      = 0x86
	DescriptorTagContentAdvisory     = 0x87
	DescriptorTagExtendedChannelName = 0xa0
	DescriptorTagServiceLocation     = 0xa1
)

// forEachDescriptor 遍历descriptor loop，长度越界的descriptor及其后面的数据被忽略
func forEachDescriptor(b []byte, fn func(tag uint8, data []byte)) {
	for len(b) >= 2 {
		tag := b[0]
		l := int(b[1])
		if 2+l > len(b) {
			Log.Debugf("[psip] descriptor truncated. tag=0x%02x, len=%d, remain=%d", tag, l, len(b)-2)
			return
		}
		fn(tag, b[2:2+l])
		b = b[2+l:]
	}
}

// ISO_639_language_descriptor，只取第一个语言
func parseIso639LanguageDescriptor(data []byte) string {
	if len(data) < 3 {
		return ""
	}
	return string(data[:3])
}

// service_descriptor <EN 300 468> <6.2.33>
// service_type                 [8b]
// service_provider_name_length [8b]
// service_provider_name        [N*8b]
// service_name_length          [8b]
// service_name                 [N*8b]
func parseServiceDescriptor(data []byte) (serviceType uint8, provider, name string) {
	if len(data) < 2 {
		return
	}
	serviceType = data[0]
	providerLen := int(data[1])
	if 2+providerLen >= len(data) {
		return
	}
	provider = DecodeDvbString(data[2 : 2+providerLen])
	nameLen := int(data[2+providerLen])
	nameStart := 3 + providerLen
	if nameStart+nameLen > len(data) {
		return
	}
	name = DecodeDvbString(data[nameStart : nameStart+nameLen])
	return
}

// short_event_descriptor <EN 300 468> <6.2.37>
// ISO_639_language_code [24b]
// event_name_length     [8b]
// event_name_char       [N*8b]
// text_length           [8b]
// text_char             [N*8b]
func parseShortEventDescriptor(data []byte) (lang, name, text string) {
	if len(data) < 4 {
		return
	}
	lang = string(data[:3])
	nameLen := int(data[3])
	if 4+nameLen > len(data) {
		return
	}
	name = DecodeDvbString(data[4 : 4+nameLen])
	if 4+nameLen >= len(data) {
		return
	}
	textLen := int(data[4+nameLen])
	textStart := 5 + nameLen
	if textStart+textLen > len(data) {
		return
	}
	text = DecodeDvbString(data[textStart : textStart+textLen])
	return
}

// extended_event_descriptor <EN 300 468> <6.2.15>，只取text部分，item列表忽略
// descriptor_number(4) last_descriptor_number(4)
// ISO_639_language_code [24b]
// length_of_items       [8b]
// items...
// text_length           [8b]
// text_char             [N*8b]
func parseExtendedEventDescriptorText(data []byte) string {
	if len(data) < 5 {
		return ""
	}
	itemsLen := int(data[4])
	textLenPos := 5 + itemsLen
	if textLenPos >= len(data) {
		return ""
	}
	textLen := int(data[textLenPos])
	if textLenPos+1+textLen > len(data) {
		return ""
	}
	return DecodeDvbString(data[textLenPos+1 : textLenPos+1+textLen])
}
