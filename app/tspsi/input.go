// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"context"
	"errors"
	"io"
	"net"
	"os"

	"github.com/haivision/srtgo"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/naza/pkg/nazanet"
	"github.com/q191201771/tunerpsi/pkg/base"
)

// IInput TS数据源
//
// RunLoop 阻塞直到数据源结束或者ctx被取消，onData在RunLoop的goroutine中回调，回调结束后b不再有效
type IInput interface {
	RunLoop(ctx context.Context, onData func(b []byte)) error
	UniqueKey() string
}

func NewInput(config InputConfig) IInput {
	switch config.Type {
	case InputTypeUdp:
		return NewUdpInput(config.UdpAddr)
	case InputTypeSrt:
		return NewSrtInput(config.SrtHost, uint16(config.SrtPort), config.SrtMode)
	}
	return NewFileInput(config.File, config.ReadChunkSize)
}

// ----- file ----------------------------------------------------------------------------------------------------------

type FileInput struct {
	uniqueKey string
	filename  string
	chunkSize int
}

func NewFileInput(filename string, chunkSize int) *FileInput {
	return &FileInput{
		uniqueKey: base.GenUkFileInput(),
		filename:  filename,
		chunkSize: chunkSize,
	}
}

func (in *FileInput) RunLoop(ctx context.Context, onData func(b []byte)) error {
	fp, err := os.Open(in.filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	nazalog.Infof("[%s] open file succ. filename=%s", in.uniqueKey, in.filename)

	buf := make([]byte, in.chunkSize)
	var total int64
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// ReadFull保证除了最后一块，每次都是整packet
		n, err := io.ReadFull(fp, buf)
		if n > 0 {
			total += int64(n)
			onData(buf[:n])
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			nazalog.Infof("[%s] read file done. total=%d", in.uniqueKey, total)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (in *FileInput) UniqueKey() string {
	return in.uniqueKey
}

// ----- udp -----------------------------------------------------------------------------------------------------------

type UdpInput struct {
	uniqueKey string
	addr      string
}

func NewUdpInput(addr string) *UdpInput {
	return &UdpInput{
		uniqueKey: base.GenUkUdpInput(),
		addr:      addr,
	}
}

func (in *UdpInput) RunLoop(ctx context.Context, onData func(b []byte)) error {
	conn, err := nazanet.NewUdpConnection(func(option *nazanet.UdpConnectionOption) {
		option.LAddr = in.addr
	})
	if err != nil {
		return err
	}
	nazalog.Infof("[%s] udp listen succ. addr=%s", in.uniqueKey, in.addr)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Dispose()
		case <-done:
		}
	}()

	err = conn.RunLoop(func(b []byte, raddr *net.UDPAddr, err error) bool {
		if err != nil {
			return false
		}
		onData(b)
		return true
	})
	if ctx.Err() != nil {
		// 主动关闭导致的错误
		return nil
	}
	return err
}

func (in *UdpInput) UniqueKey() string {
	return in.uniqueKey
}

// ----- srt -----------------------------------------------------------------------------------------------------------

type SrtInput struct {
	uniqueKey string
	host      string
	port      uint16
	mode      string
}

func NewSrtInput(host string, port uint16, mode string) *SrtInput {
	return &SrtInput{
		uniqueKey: base.GenUkSrtInput(),
		host:      host,
		port:      port,
		mode:      mode,
	}
}

func (in *SrtInput) RunLoop(ctx context.Context, onData func(b []byte)) error {
	options := make(map[string]string)
	options["transtype"] = "live"
	options["blocking"] = "1"
	options["mode"] = in.mode

	sck := srtgo.NewSrtSocket(in.host, in.port, options)
	if sck == nil {
		return base.ErrInputSrtSocket
	}

	conn := sck
	if in.mode == SrtModeCaller {
		if err := sck.Connect(); err != nil {
			sck.Close()
			return err
		}
		nazalog.Infof("[%s] srt connect succ. addr=%s:%d", in.uniqueKey, in.host, in.port)
	} else {
		if err := sck.Listen(1); err != nil {
			sck.Close()
			return err
		}
		nazalog.Infof("[%s] srt listen succ. addr=%s:%d", in.uniqueKey, in.host, in.port)

		var addr *net.UDPAddr
		var err error
		conn, addr, err = sck.Accept()
		if err != nil {
			sck.Close()
			return err
		}
		nazalog.Infof("[%s] srt accept. remote=%s", in.uniqueKey, addr.String())
		defer sck.Close()
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	// live模式下，每次read至少要能容纳一个1316字节的payload
	buf := make([]byte, 1500)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			conn.Close()
			if errors.Is(err, srtgo.EConnLost) {
				nazalog.Infof("[%s] srt connection lost.", in.uniqueKey)
				return nil
			}
			return err
		}
		if n > 0 {
			onData(buf[:n])
		}
	}
}

func (in *SrtInput) UniqueKey() string {
	return in.uniqueKey
}
