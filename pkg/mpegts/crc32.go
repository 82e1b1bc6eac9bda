// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

// CRC_32 of MPEG-2 sections: poly 0x04C11DB7, init 0xFFFFFFFF, MSB first, no final xor.
// <iso13818-1.pdf> <Annex B>
var crc32Table [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
		crc32Table[i] = crc
	}
}

func CalcCrc32(crc uint32, buffer []byte) uint32 {
	for _, b := range buffer {
		crc = (crc << 8) ^ crc32Table[byte(crc>>24)^b]
	}
	return crc
}

// VerifyCrc32 对整个section（包含末尾的CRC_32字段）计算CRC，结果为0表示校验通过
func VerifyCrc32(section []byte) bool {
	if len(section) < 4 {
		return false
	}
	return CalcCrc32(0xffffffff, section) == 0
}
