package gm17

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// WriteTo writes the proving key to w, points compressed.
func (pk *ProvingKey) WriteTo(w io.Writer) (int64, error) {
	return pk.writeTo(w, false)
}

// WriteRawTo writes the proving key to w, points uncompressed.
func (pk *ProvingKey) WriteRawTo(w io.Writer) (int64, error) {
	return pk.writeTo(w, true)
}

func (pk *ProvingKey) writeTo(w io.Writer, raw bool) (int64, error) {
	n, err := pk.VK.writeTo(w, raw)
	if err != nil {
		return n, err
	}

	var enc *bn254.Encoder
	if raw {
		enc = bn254.NewEncoder(w, bn254.RawEncoding())
	} else {
		enc = bn254.NewEncoder(w)
	}

	toEncode := []interface{}{
		pk.AQuery,
		pk.BQuery,
		pk.CQuery1,
		pk.CQuery2,
		&pk.GGammaZ,
		&pk.HGammaZ,
		&pk.GAbGammaZ,
		&pk.GGamma2Z2,
		pk.GGamma2ZT,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return n + enc.BytesWritten(), err
		}
	}
	return n + enc.BytesWritten(), nil
}

// ReadFrom reads a proving key from r.
func (pk *ProvingKey) ReadFrom(r io.Reader) (int64, error) {
	n, err := pk.VK.ReadFrom(r)
	if err != nil {
		return n, err
	}

	dec := bn254.NewDecoder(r)
	toDecode := []interface{}{
		&pk.AQuery,
		&pk.BQuery,
		&pk.CQuery1,
		&pk.CQuery2,
		&pk.GGammaZ,
		&pk.HGammaZ,
		&pk.GAbGammaZ,
		&pk.GGamma2Z2,
		&pk.GGamma2ZT,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return n + dec.BytesRead(), err
		}
	}
	return n + dec.BytesRead(), nil
}

// WriteTo writes the verifying key to w, points compressed.
func (vk *VerifyingKey) WriteTo(w io.Writer) (int64, error) {
	return vk.writeTo(w, false)
}

// WriteRawTo writes the verifying key to w, points uncompressed.
func (vk *VerifyingKey) WriteRawTo(w io.Writer) (int64, error) {
	return vk.writeTo(w, true)
}

func (vk *VerifyingKey) writeTo(w io.Writer, raw bool) (int64, error) {
	var enc *bn254.Encoder
	if raw {
		enc = bn254.NewEncoder(w, bn254.RawEncoding())
	} else {
		enc = bn254.NewEncoder(w)
	}

	toEncode := []interface{}{
		&vk.H,
		&vk.GAlpha,
		&vk.HBeta,
		&vk.GGamma,
		&vk.HGamma,
		vk.Query,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom reads a verifying key from r.
func (vk *VerifyingKey) ReadFrom(r io.Reader) (int64, error) {
	dec := bn254.NewDecoder(r)
	toDecode := []interface{}{
		&vk.H,
		&vk.GAlpha,
		&vk.HBeta,
		&vk.GGamma,
		&vk.HGamma,
		&vk.Query,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}
