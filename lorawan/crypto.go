// Copyright (c) 2024, The OTNS Authors.
// All rights reserved. See LICENSE header in frame.go.

package lorawan

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// SessionKeys10 holds the two session keys derived for a LoRaWAN 1.0.x
// device after a successful OTAA join.
type SessionKeys10 struct {
	NwkSKey AES128Key
	AppSKey AES128Key
}

// DeriveSessionKeys10 derives NwkSKey/AppSKey per LoRaWAN 1.0.x §6.2.5.
func DeriveSessionKeys10(appKey AES128Key, joinNonce [3]byte, netID [3]byte, devNonce uint16) (SessionKeys10, error) {
	block, err := aes.NewCipher(appKey[:])
	if err != nil {
		return SessionKeys10{}, err
	}

	var devNonceBytes [2]byte
	binary.LittleEndian.PutUint16(devNonceBytes[:], devNonce)

	var keys SessionKeys10
	nwkMsg := sessionKeyBlock(0x01, joinNonce, netID, devNonceBytes)
	block.Encrypt(keys.NwkSKey[:], nwkMsg[:])

	appMsg := sessionKeyBlock(0x02, joinNonce, netID, devNonceBytes)
	block.Encrypt(keys.AppSKey[:], appMsg[:])

	return keys, nil
}

func sessionKeyBlock(tag byte, joinNonce [3]byte, netID [3]byte, devNonce [2]byte) (msg [16]byte) {
	msg[0] = tag
	copy(msg[1:4], joinNonce[:])
	copy(msg[4:7], netID[:])
	copy(msg[7:9], devNonce[:])
	return msg
}

// SessionKeys11 holds the four session keys derived for a LoRaWAN 1.1
// device after a successful OTAA join.
type SessionKeys11 struct {
	AppSKey     AES128Key
	FNwkSIntKey AES128Key
	SNwkSIntKey AES128Key
	NwkSEncKey  AES128Key
}

// DeriveSessionKeys11 derives the four LoRaWAN 1.1 session keys per §6.2.5.
func DeriveSessionKeys11(nwkKey, appKey AES128Key, joinNonce uint32, joinEUI EUI64, devNonce uint16) (SessionKeys11, error) {
	var joinNonceBytes [3]byte
	joinNonceBytes[0] = byte(joinNonce)
	joinNonceBytes[1] = byte(joinNonce >> 8)
	joinNonceBytes[2] = byte(joinNonce >> 16)

	var devNonceBytes [2]byte
	binary.LittleEndian.PutUint16(devNonceBytes[:], devNonce)

	appBlock, err := aes.NewCipher(appKey[:])
	if err != nil {
		return SessionKeys11{}, err
	}
	nwkBlock, err := aes.NewCipher(nwkKey[:])
	if err != nil {
		return SessionKeys11{}, err
	}

	var keys SessionKeys11
	appBlock.Encrypt(keys.AppSKey[:], sessionKeyBlock11(0x02, joinNonceBytes, joinEUI, devNonceBytes)[:])
	nwkBlock.Encrypt(keys.FNwkSIntKey[:], sessionKeyBlock11(0x01, joinNonceBytes, joinEUI, devNonceBytes)[:])
	nwkBlock.Encrypt(keys.SNwkSIntKey[:], sessionKeyBlock11(0x03, joinNonceBytes, joinEUI, devNonceBytes)[:])
	nwkBlock.Encrypt(keys.NwkSEncKey[:], sessionKeyBlock11(0x04, joinNonceBytes, joinEUI, devNonceBytes)[:])

	return keys, nil
}

func sessionKeyBlock11(tag byte, joinNonce [3]byte, joinEUI EUI64, devNonce [2]byte) (msg [16]byte) {
	msg[0] = tag
	copy(msg[1:4], joinNonce[:])
	copy(msg[4:12], joinEUI[:])
	copy(msg[12:14], devNonce[:])
	return msg
}

// EncryptJoinAccept applies the join-accept "encrypt as decrypt" ECB
// obfuscation (LoRaWAN §6.2.4): the sender runs AES-Decrypt so that an
// end-device recovers the cleartext with a plain AES-Encrypt.
func EncryptJoinAccept(key AES128Key, payload []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	padded := padTo16(payload)
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += 16 {
		block.Decrypt(out[i:i+16], padded[i:i+16])
	}
	return out, nil
}

// DecryptJoinAccept reverses EncryptJoinAccept.
func DecryptJoinAccept(key AES128Key, encrypted []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(encrypted))
	for i := 0; i < len(encrypted); i += 16 {
		block.Encrypt(out[i:i+16], encrypted[i:i+16])
	}
	return out, nil
}

func padTo16(b []byte) []byte {
	if len(b)%16 == 0 {
		return b
	}
	padded := make([]byte, len(b)+(16-len(b)%16))
	copy(padded, b)
	return padded
}

// ComputeMIC computes a 4-byte AES-CMAC-PRF-128 message integrity code
// (RFC 4493) over msg using key, keeping only the first 4 bytes per
// LoRaWAN §4.4.
func ComputeMIC(key AES128Key, msg []byte) ([4]byte, error) {
	full, err := aesCMAC(key[:], msg)
	if err != nil {
		return [4]byte{}, err
	}
	var mic [4]byte
	copy(mic[:], full[:4])
	return mic, nil
}

// aesCMAC implements AES-CMAC (RFC 4493) over key/data.
func aesCMAC(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	k1, k2 := cmacSubkeys(block)

	n := len(data)
	var lastBlock [16]byte
	var complete bool

	if n == 0 {
		lastBlock[0] = 0x80
		complete = false
	} else if n%16 == 0 {
		copy(lastBlock[:], data[n-16:])
		complete = true
	} else {
		remainder := n % 16
		copy(lastBlock[:], data[n-remainder:])
		lastBlock[remainder] = 0x80
		complete = false
	}

	xorBlock := k2
	if complete {
		xorBlock = k1
	}
	for i := 0; i < 16; i++ {
		lastBlock[i] ^= xorBlock[i]
	}

	numFullBlocks := n / 16
	if complete {
		numFullBlocks--
	}

	x := make([]byte, 16)
	y := make([]byte, 16)
	for i := 0; i < numFullBlocks; i++ {
		for j := 0; j < 16; j++ {
			y[j] = x[j] ^ data[i*16+j]
		}
		block.Encrypt(x, y)
	}
	for j := 0; j < 16; j++ {
		y[j] = x[j] ^ lastBlock[j]
	}
	block.Encrypt(x, y)
	return x, nil
}

func cmacSubkeys(block cipher.Block) (k1, k2 [16]byte) {
	const rb = 0x87
	var zero, k0 [16]byte
	block.Encrypt(k0[:], zero[:])

	k1 = leftShift1(k0)
	if k0[0]&0x80 != 0 {
		k1[15] ^= rb
	}
	k2 = leftShift1(k1)
	if k1[0]&0x80 != 0 {
		k2[15] ^= rb
	}
	return k1, k2
}

func leftShift1(b [16]byte) [16]byte {
	var out [16]byte
	var carry byte
	for i := 15; i >= 0; i-- {
		out[i] = b[i]<<1 | carry
		carry = b[i] >> 7
	}
	return out
}
