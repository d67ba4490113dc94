// Package sat implementa validaciones tributarias de Guatemala (SAT).
package sat

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Errores de validación de NIT. ErrNITMuyCorto y ErrNITCuerpoNoNumerico son
// centinelas; el error de dígito verificador es *ChecksumError para exponer
// el dígito esperado y el recibido.
var (
	ErrNITMuyCorto         = errors.New("sat: el NIT debe tener al menos 2 caracteres")
	ErrNITCuerpoNoNumerico = errors.New("sat: el NIT debe contener solo números y el dígito verificador")
)

// ChecksumError indica que el dígito verificador no corresponde al cuerpo del NIT.
type ChecksumError struct {
	Esperado byte
	Recibido byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("sat: dígito verificador del NIT incorrecto: esperado %c, recibido %c", e.Esperado, e.Recibido)
}

// ValidateNIT valida el dígito verificador de un NIT (con o sin guiones/puntos)
// según el algoritmo módulo 11 del SAT: cada dígito del cuerpo se multiplica por
// su posición desde la derecha más 2 (el más a la derecha pesa 2), se suma,
// y el verificador es (11 - suma mod 11) mod 11, con 10 representado como 'K'.
// Puro y determinista; no hace I/O.
func ValidateNIT(nit string) error {
	limpio := stripNonAlnum(nit)
	if len(limpio) < 2 {
		return ErrNITMuyCorto
	}

	verificador := limpio[len(limpio)-1]
	if verificador >= 'a' && verificador <= 'z' {
		verificador -= 'a' - 'A'
	}
	cuerpo := limpio[:len(limpio)-1]

	var suma int
	for i := 0; i < len(cuerpo); i++ {
		d := cuerpo[len(cuerpo)-1-i]
		if d < '0' || d > '9' {
			return ErrNITCuerpoNoNumerico
		}
		suma += int(d-'0') * (i + 2)
	}

	esperado := DigitoVerificador(suma)
	if verificador != esperado {
		return &ChecksumError{Esperado: esperado, Recibido: verificador}
	}
	return nil
}

// DigitoVerificador devuelve el carácter verificador para la suma ponderada del
// cuerpo: (11 - suma mod 11) mod 11; el resto 10 se representa como 'K'.
func DigitoVerificador(suma int) byte {
	resultado := (11 - suma%11) % 11
	if resultado == 10 {
		return 'K'
	}
	return byte('0' + resultado)
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
