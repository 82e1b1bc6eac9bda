// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package psip

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf16Be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// LangString multiple_string_structure中的一个字符串
type LangString struct {
	LanguageCode string
	Text         string
}

// DecodeMultipleString 只返回multiple_string_structure中的第一个字符串
func DecodeMultipleString(b []byte) string {
	strs := ParseMultipleString(b)
	if len(strs) == 0 {
		return ""
	}
	return strs[0].Text
}

// ParseMultipleString
//
// ----------------------------------------------------------------------------
// multiple_string_structure <A/65> <6.10>
// number_strings                 [8b]
// -----loop number_strings-----
// ISO_639_language_code          [24b]
// number_segments                [8b]
// -----loop number_segments-----
// compression_type               [8b]
// mode                           [8b]
// number_bytes                   [8b]
// compressed_string_byte         [N*8b]
// ----------------------------------------------------------------------------
//
// 只支持compression_type为0（不压缩），Huffman压缩的segment被忽略。数据被截断时返回已经解析出的部分。
func ParseMultipleString(b []byte) (ret []LangString) {
	if len(b) < 1 {
		return
	}
	numberStrings := int(b[0])
	pos := 1
	for i := 0; i < numberStrings; i++ {
		if pos+4 > len(b) {
			return
		}
		lang := string(b[pos : pos+3])
		numberSegments := int(b[pos+3])
		pos += 4

		var sb strings.Builder
		for j := 0; j < numberSegments; j++ {
			if pos+3 > len(b) {
				return
			}
			compressionType := b[pos]
			mode := b[pos+1]
			numberBytes := int(b[pos+2])
			pos += 3
			if pos+numberBytes > len(b) {
				return
			}
			sb.WriteString(decodeSegment(compressionType, mode, b[pos:pos+numberBytes]))
			pos += numberBytes
		}
		ret = append(ret, LangString{
			LanguageCode: lang,
			Text:         sb.String(),
		})
	}
	return
}

func decodeSegment(compressionType, mode uint8, b []byte) string {
	if compressionType != 0 {
		Log.Debugf("[psip] compressed string segment not supported. compression_type=%d", compressionType)
		return ""
	}
	switch {
	case mode == 0x00:
		return decodeWith(charmap.ISO8859_1, b)
	case mode == 0x3F:
		return decodeWith(utf16Be, b)
	case mode <= 0x33:
		// 选择Unicode的某个page，每个字节是该page内的低8位
		var sb strings.Builder
		for _, c := range b {
			sb.WriteRune(rune(mode)<<8 | rune(c))
		}
		return sb.String()
	}
	Log.Debugf("[psip] string segment mode not supported. mode=0x%02x", mode)
	return ""
}

// DecodeUtf16Be 用于VCT的short_name，末尾的0被去掉
func DecodeUtf16Be(b []byte) string {
	return decodeWith(utf16Be, b)
}

// <EN 300 468> <Annex A.2> 首字节选择字符表
var dvbSingleByteTables = map[uint8]encoding.Encoding{
	0x01: charmap.ISO8859_5,
	0x02: charmap.ISO8859_6,
	0x03: charmap.ISO8859_7,
	0x04: charmap.ISO8859_8,
	0x05: charmap.ISO8859_9,
	0x06: charmap.ISO8859_10,
	0x07: charmap.Windows874, // ISO/IEC 8859-11
	0x09: charmap.ISO8859_13,
	0x0A: charmap.ISO8859_14,
	0x0B: charmap.ISO8859_15,
}

// 0x10 0x00 0xNN 形式指定的ISO/IEC 8859-N
var dvbIso8859Parts = map[uint8]encoding.Encoding{
	0x01: charmap.ISO8859_1,
	0x02: charmap.ISO8859_2,
	0x03: charmap.ISO8859_3,
	0x04: charmap.ISO8859_4,
	0x05: charmap.ISO8859_5,
	0x06: charmap.ISO8859_6,
	0x07: charmap.ISO8859_7,
	0x08: charmap.ISO8859_8,
	0x09: charmap.ISO8859_9,
	0x0A: charmap.ISO8859_10,
	0x0B: charmap.Windows874,
	0x0D: charmap.ISO8859_13,
	0x0E: charmap.ISO8859_14,
	0x0F: charmap.ISO8859_15,
	0x10: charmap.ISO8859_16,
}

// DecodeDvbString 解码DVB SI中的字符串 <EN 300 468> <Annex A>
//
// 没有字符表前缀时标准规定为ISO/IEC 6937，x/text没有该编码，这里用Latin-1近似（ASCII部分一致）。
func DecodeDvbString(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	var enc encoding.Encoding = charmap.ISO8859_1
	first := b[0]
	switch {
	case first >= 0x20:
		// 默认字符表
	case first == 0x10:
		if len(b) < 3 {
			return ""
		}
		if e, ok := dvbIso8859Parts[b[2]]; ok {
			enc = e
		}
		b = b[3:]
	case first == 0x11:
		return decodeWith(utf16Be, b[1:])
	case first == 0x15:
		return strings.TrimRight(string(b[1:]), "\x00")
	default:
		if e, ok := dvbSingleByteTables[first]; ok {
			enc = e
		}
		b = b[1:]
	}
	return decodeWith(enc, stripDvbControlCodes(b))
}

// 单字节字符表中0x80~0x9F是控制码，0x8A为换行，其余（比如强调开关0x86/0x87）去掉
func stripDvbControlCodes(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch {
		case c == 0x8A:
			out = append(out, '\n')
		case c >= 0x80 && c <= 0x9F:
		default:
			out = append(out, c)
		}
	}
	return out
}

func decodeWith(enc encoding.Encoding, b []byte) string {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		Log.Debugf("[psip] decode string failed. err=%+v", err)
		return ""
	}
	return strings.TrimRight(string(out), "\x00")
}
