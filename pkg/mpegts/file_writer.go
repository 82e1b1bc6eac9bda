// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"os"

	"github.com/q191201771/tunerpsi/pkg/base"
)

// FileWriter 将输入的原始TS数据落盘，便于复现现场问题
type FileWriter struct {
	fp      *os.File
	written int64
}

func (fw *FileWriter) Create(filename string) (err error) {
	fw.fp, err = os.Create(filename)
	return
}

// Write 只写入完整的188字节packet，末尾不足一个packet的部分丢弃
func (fw *FileWriter) Write(b []byte) (err error) {
	if fw.fp == nil {
		return base.ErrFileNotExist
	}
	n := len(b) / PacketSize * PacketSize
	if n == 0 {
		return nil
	}
	_, err = fw.fp.Write(b[:n])
	fw.written += int64(n)
	return
}

func (fw *FileWriter) Written() int64 {
	return fw.written
}

func (fw *FileWriter) Dispose() error {
	if fw.fp == nil {
		return base.ErrFileNotExist
	}
	return fw.fp.Close()
}

func (fw *FileWriter) Name() string {
	if fw.fp == nil {
		return ""
	}
	return fw.fp.Name()
}
