package feeds

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoFiles           = errors.New("nenhum arquivo informado")
	ErrNotFound          = errors.New("arquivo não encontrado")
	ErrEmptyFile         = errors.New("o arquivo está vazio")
	ErrMissingColumns    = errors.New("arquivo não contém as colunas necessárias")
	ErrNoValidatedRoutes = errors.New("não há rotas validadas no arquivo")
	ErrInvalidDate       = errors.New("formato de data inválido")
	ErrInvalidNumber     = errors.New("formato inválido na coluna de quantidade de pedidos")
	ErrMalformed         = errors.New("erro ao processar o arquivo, verifique se o formato está correto (CSV)")
)

// ValidationError is a fatal input problem found before the engine runs.
type ValidationError struct {
	File   string
	Column string
	Line   int
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "erro no arquivo %s: ", e.File)
	}
	b.WriteString(e.Err.Error())
	if e.Column != "" {
		fmt.Fprintf(&b, " na coluna %s", e.Column)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (linha %d)", e.Line)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
