// seed_locations genera la migración que da de alta las ubicaciones físicas (bins, máquinas,
// gabinetes y racks) a partir de un CSV exportado de la hoja de planta.
//
// Uso: go run ./cmd/seed_locations [-latin1] [ruta/ubicaciones.csv]
// Por defecto busca ubicaciones.csv en el directorio actual.
// Columnas: tipo,código,nombre (la primera fila puede ser encabezado).
// Escribe: internal/infrastructure/postgres/migrations/000002_seed_locations.{up,down}.sql
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
)

// locationNamespace los IDs se derivan de (tipo, código) para que regenerar el seed no los cambie.
var locationNamespace = uuid.MustParse("6f1c2a8e-4b1d-4e0b-9a57-3c0f2d9b7e11")

type seedRow struct {
	kind entity.LocationKind
	code string
	name string
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1 (export de Excel)")
	flag.Parse()

	csvPath := "ubicaciones.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := readRows(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	up, down := buildSQL(rows)
	dir := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations")
	for name, content := range map[string]string{
		"000002_seed_locations.up.sql":   up,
		"000002_seed_locations.down.sql": down,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Escribir %s: %v\n", name, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Generado %s: %d ubicaciones\n", dir, len(rows))
}

// readRows parsea el CSV. Omite el encabezado y filas vacías; falla ante tipos desconocidos
// o códigos repetidos dentro del mismo tipo.
func readRows(r io.Reader) ([]seedRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	seen := make(map[string]struct{})
	var rows []seedRow
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) < 2 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		kind, ok := entity.ParseLocationKind(rec[0])
		if !ok {
			if line == 1 {
				continue // encabezado
			}
			return nil, fmt.Errorf("línea %d: tipo de ubicación desconocido %q", line, rec[0])
		}
		if kind == entity.LocationNotAssigned {
			continue
		}
		row := seedRow{kind: kind, code: strings.TrimSpace(rec[1])}
		if len(rec) > 2 {
			row.name = strings.TrimSpace(rec[2])
		}
		if row.code == "" {
			return nil, fmt.Errorf("línea %d: código vacío", line)
		}
		key := string(kind) + "/" + row.code
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("línea %d: código repetido %s", line, key)
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildSQL arma la migración up (upsert por código) y la down (borrado por código).
func buildSQL(rows []seedRow) (up, down string) {
	byKind := make(map[entity.LocationKind][]seedRow)
	for _, r := range rows {
		byKind[r.kind] = append(byKind[r.kind], r)
	}
	var kinds []entity.LocationKind
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var ub, db strings.Builder
	ub.WriteString("-- Ubicaciones físicas. Generado por cmd/seed_locations.\n\n")
	db.WriteString("-- Reverso de 000002_seed_locations.up.sql\n\n")
	for _, k := range kinds {
		table, codeCol, ok := postgres.LocationTable(k)
		if !ok {
			continue
		}
		list := byKind[k]
		sort.Slice(list, func(i, j int) bool { return list[i].code < list[j].code })

		fmt.Fprintf(&ub, "-- %s\n", k)
		fmt.Fprintf(&ub, "INSERT INTO %s (id, %s, name) VALUES\n", table, codeCol)
		codes := make([]string, 0, len(list))
		for i, r := range list {
			id := uuid.NewSHA1(locationNamespace, []byte(string(k)+"/"+r.code))
			sep := ","
			if i == len(list)-1 {
				sep = ""
			}
			fmt.Fprintf(&ub, "  ('%s', '%s', '%s')%s\n", id, escapeSQL(r.code), escapeSQL(r.name), sep)
			codes = append(codes, "'"+escapeSQL(r.code)+"'")
		}
		fmt.Fprintf(&ub, "ON CONFLICT (%s) DO UPDATE SET name = EXCLUDED.name, updated_at = now();\n\n", codeCol)
		fmt.Fprintf(&db, "DELETE FROM %s WHERE %s IN (%s);\n", table, codeCol, strings.Join(codes, ", "))
	}
	return ub.String(), db.String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
