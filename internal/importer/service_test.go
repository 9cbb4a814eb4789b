package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ParcMagScene/MAGSAV-sub011/internal/domain"
	"github.com/ParcMagScene/MAGSAV-sub011/internal/repository"

	"github.com/xuri/excelize/v2"
)

func TestRunImportsFileEndToEnd(t *testing.T) {
	products := newStubProductRepo()
	orgs := newStubOrgRepo()
	interventions := &stubInterventionRepo{}
	logs := &stubLogRepo{}

	service := NewService(products, orgs, interventions, logs)

	data := "PRODUIT;N° DE SERIE;PROPRIETAIRE;PANNE;STATUT;DATE ENTREE\n" +
		"Console XR;SN-001;ACME Corp;Fader cassé;Ouverte;12/01/2024\n"

	result, err := service.Run(context.Background(), Request{
		Data:     strings.NewReader(data),
		FileName: "parc.csv",
	})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if result.Rows != 1 || result.ProductsCreated != 1 || result.InterventionsCreated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}

	if len(products.inserted) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products.inserted))
	}
	product := products.inserted[0]
	if product.Name != "Console XR" || product.SerialNumber != "SN-001" {
		t.Fatalf("unexpected product: %+v", product)
	}
	if product.TrackingCode == "" {
		t.Fatalf("expected a generated tracking code")
	}

	if len(orgs.inserted) != 1 {
		t.Fatalf("expected 1 organization, got %d", len(orgs.inserted))
	}
	org := orgs.inserted[0]
	if org.Name != "ACME Corp" || org.Kind != domain.OrganizationKindClient {
		t.Fatalf("unexpected organization: %+v", org)
	}

	if len(interventions.inserted) != 1 {
		t.Fatalf("expected 1 intervention, got %d", len(interventions.inserted))
	}
	intervention := interventions.inserted[0]
	if intervention.Status != domain.StatusOpen {
		t.Fatalf("expected Open status, got %s", intervention.Status)
	}
	if intervention.OwnerKind != domain.OwnerOrganization {
		t.Fatalf("expected ORGANIZATION owner, got %s", intervention.OwnerKind)
	}
	if intervention.OrganizationID == nil || *intervention.OrganizationID != org.ID {
		t.Fatalf("intervention not linked to organization: %+v", intervention)
	}
	if intervention.ProductID != product.ID {
		t.Fatalf("intervention not linked to product: %+v", intervention)
	}
	if intervention.DateIn == nil || *intervention.DateIn != "2024-01-12" {
		t.Fatalf("unexpected date_in: %v", intervention.DateIn)
	}
	if intervention.DateOut != nil {
		t.Fatalf("expected nil date_out, got %v", *intervention.DateOut)
	}

	if !strings.Contains(result.Summary, "1 interventions created") {
		t.Fatalf("unexpected summary: %s", result.Summary)
	}
}

func TestRunSecondImportReusesProducts(t *testing.T) {
	products := newStubProductRepo()
	orgs := newStubOrgRepo()
	interventions := &stubInterventionRepo{}

	service := NewService(products, orgs, interventions, nil)

	data := "produit,no_de_serie,proprietaire\n" +
		"Console XR,SN-001,ACME Corp\n" +
		"Ampli Z,SN-002,ACME Corp\n"

	first, err := service.Run(context.Background(), Request{Data: strings.NewReader(data), FileName: "parc.csv"})
	if err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	if first.ProductsCreated != 2 || first.InterventionsCreated != 2 {
		t.Fatalf("unexpected first run: %+v", first)
	}

	second, err := service.Run(context.Background(), Request{Data: strings.NewReader(data), FileName: "parc.csv"})
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if second.ProductsCreated != 0 {
		t.Fatalf("expected no products created on re-import, got %d", second.ProductsCreated)
	}
	// Interventions are historical events, re-imported every time.
	if second.InterventionsCreated != 2 {
		t.Fatalf("expected 2 interventions on re-import, got %d", second.InterventionsCreated)
	}
	if len(orgs.inserted) != 1 {
		t.Fatalf("expected organization to be reused, got %d inserts", len(orgs.inserted))
	}
	if len(interventions.inserted) != 4 {
		t.Fatalf("expected 4 interventions total, got %d", len(interventions.inserted))
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	products := newStubProductRepo()
	orgs := newStubOrgRepo()
	interventions := &stubInterventionRepo{}
	logs := &stubLogRepo{}

	service := NewService(products, orgs, interventions, logs)

	// Two rows share a serial: only one product would be created.
	data := "produit,no_de_serie,proprietaire\n" +
		"Console XR,SN-001,ACME Corp\n" +
		"Console XR,SN-001,Particulier\n"

	result, err := service.Run(context.Background(), Request{
		Data:     strings.NewReader(data),
		FileName: "parc.csv",
		DryRun:   true,
	})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if !result.DryRun {
		t.Fatalf("expected dry-run result")
	}
	if result.ProductsCreated != 1 || result.InterventionsCreated != 2 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if len(products.inserted) != 0 || len(orgs.inserted) != 0 || len(interventions.inserted) != 0 {
		t.Fatalf("dry-run must not write to the store")
	}
	if !strings.Contains(result.Summary, "dry-run") {
		t.Fatalf("summary should mention dry-run: %s", result.Summary)
	}
}

func TestRunIsolatesRowErrors(t *testing.T) {
	products := newStubProductRepo()
	orgs := newStubOrgRepo()
	interventions := &stubInterventionRepo{}
	logs := &stubLogRepo{}

	service := NewService(products, orgs, interventions, logs)

	var b strings.Builder
	b.WriteString("produit;no_de_serie;proprietaire\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "Produit %d;SN-%03d;ACME Corp\n", i, i)
	}
	// Identity missing on both columns: rejected, but the run continues.
	b.WriteString(";;ACME Corp\n")

	result, err := service.Run(context.Background(), Request{
		Data:     strings.NewReader(b.String()),
		FileName: "parc.csv",
	})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if result.Rows != 11 {
		t.Fatalf("expected 11 rows read, got %d", result.Rows)
	}
	if result.InterventionsCreated != 10 {
		t.Fatalf("expected 10 interventions, got %d", result.InterventionsCreated)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %+v", result.Errors)
	}
	if result.Errors[0].Line != 12 {
		t.Fatalf("expected error on line 12, got %d", result.Errors[0].Line)
	}
	if len(logs.entries) != 1 {
		t.Fatalf("expected 1 persisted log entry, got %d", len(logs.entries))
	}
	if logs.entries[0].RowNumber == nil || *logs.entries[0].RowNumber != 12 {
		t.Fatalf("persisted entry missing row number: %+v", logs.entries[0])
	}
}

func TestRunFailsWithoutIdentityColumn(t *testing.T) {
	service := NewService(newStubProductRepo(), newStubOrgRepo(), &stubInterventionRepo{}, nil)

	data := "proprietaire,panne\nACME Corp,morte\n"
	_, err := service.Run(context.Background(), Request{Data: strings.NewReader(data), FileName: "parc.csv"})
	if !errors.Is(err, ErrNoIdentityColumn) {
		t.Fatalf("expected ErrNoIdentityColumn, got %v", err)
	}
}

func TestRunFailsOnEmptyFile(t *testing.T) {
	service := NewService(newStubProductRepo(), newStubOrgRepo(), &stubInterventionRepo{}, nil)

	_, err := service.Run(context.Background(), Request{Data: strings.NewReader(""), FileName: "parc.csv"})
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestRunContinuesAfterStoreErrors(t *testing.T) {
	products := newStubProductRepo()
	orgs := newStubOrgRepo()
	interventions := &stubInterventionRepo{insertErr: errors.New("disk full")}

	service := NewService(products, orgs, interventions, nil)

	data := "produit,no_de_serie\nConsole XR,SN-001\nAmpli Z,SN-002\n"
	result, err := service.Run(context.Background(), Request{Data: strings.NewReader(data), FileName: "parc.csv"})
	if err != nil {
		t.Fatalf("store errors must stay row-level, got %v", err)
	}

	if result.InterventionsCreated != 0 {
		t.Fatalf("expected no interventions, got %d", result.InterventionsCreated)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %+v", result.Errors)
	}
}

func TestRunSurvivesCallbackPanic(t *testing.T) {
	service := NewService(newStubProductRepo(), newStubOrgRepo(), &stubInterventionRepo{}, nil)

	data := "produit,no_de_serie\nConsole XR,SN-001\n"
	result, err := service.Run(context.Background(), Request{
		Data:     strings.NewReader(data),
		FileName: "parc.csv",
		Log:      func(string) { panic("sink gone") },
		Progress: func(Progress) { panic("sink gone") },
	})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if result.InterventionsCreated != 1 {
		t.Fatalf("expected import to complete, got %+v", result)
	}
}

func TestRunReportsProgress(t *testing.T) {
	service := NewService(newStubProductRepo(), newStubOrgRepo(), &stubInterventionRepo{}, nil)

	data := "produit,no_de_serie\nConsole XR,SN-001\nAmpli Z,SN-002\n"
	var snapshots []Progress
	_, err := service.Run(context.Background(), Request{
		Data:     strings.NewReader(data),
		FileName: "parc.csv",
		Progress: func(p Progress) { snapshots = append(snapshots, p) },
	})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if len(snapshots) == 0 {
		t.Fatalf("expected progress snapshots")
	}
	last := snapshots[len(snapshots)-1]
	if last.Percent != 100 || last.Operation != "done" {
		t.Fatalf("unexpected final snapshot: %+v", last)
	}
	if last.TotalRows != 2 || last.InterventionsCreated != 2 {
		t.Fatalf("unexpected final snapshot counters: %+v", last)
	}
}

func TestRunSkipsBlankLines(t *testing.T) {
	service := NewService(newStubProductRepo(), newStubOrgRepo(), &stubInterventionRepo{}, nil)

	data := "produit,no_de_serie\nConsole XR,SN-001\n\n\nAmpli Z,SN-002\n"
	result, err := service.Run(context.Background(), Request{Data: strings.NewReader(data), FileName: "parc.csv"})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if result.Rows != 4 {
		t.Fatalf("blank lines still count as rows read, got %d", result.Rows)
	}
	if result.InterventionsCreated != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunLogsUnrecognizedFieldFallbacks(t *testing.T) {
	service := NewService(newStubProductRepo(), newStubOrgRepo(), &stubInterventionRepo{}, nil)

	data := "produit,no_de_serie,statut,etat,date_entree\n" +
		"Console XR,SN-001,peut-être,limbo,bientôt\n" +
		"Ampli Z,SN-002,Fermée,Vendu,12/01/2024\n"

	result, err := service.Run(context.Background(), Request{Data: strings.NewReader(data), FileName: "parc.csv"})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if result.InterventionsCreated != 2 || len(result.Errors) != 0 {
		t.Fatalf("fallbacks must not reject rows: %+v", result)
	}

	joined := strings.Join(result.Log, "\n")
	for _, want := range []string{
		`Line 2: unrecognized status "peut-être", defaulting to Open`,
		`Line 2: unrecognized situation "limbo", defaulting to InStock`,
		`Line 2: unrecognized entry date "bientôt", left empty`,
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("log missing %q:\n%s", want, joined)
		}
	}
	// Recognized cells stay quiet.
	if strings.Contains(joined, "Line 3: unrecognized") {
		t.Fatalf("unexpected fallback logged for recognized cells:\n%s", joined)
	}
}

func TestRunImportsXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]string{"PRODUIT", "N° DE SERIE", "PROPRIETAIRE"})
	_ = f.SetSheetRow(sheet, "A2", &[]string{"Console XR", "SN-001", "ACME Corp"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}

	products := newStubProductRepo()
	service := NewService(products, newStubOrgRepo(), &stubInterventionRepo{}, nil)

	result, err := service.Run(context.Background(), Request{
		Data:     bytes.NewReader(buf.Bytes()),
		FileName: "parc.xlsx",
	})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if result.ProductsCreated != 1 || result.InterventionsCreated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(products.inserted) != 1 || products.inserted[0].SerialNumber != "SN-001" {
		t.Fatalf("unexpected products: %+v", products.inserted)
	}
}

// ---- stubs ----

type stubProductRepo struct {
	bySerial  map[string]domain.Product
	inserted  []domain.Product
	nextID    int64
	findErr   error
	insertErr error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{bySerial: make(map[string]domain.Product)}
}

func (s *stubProductRepo) FindBySerial(ctx context.Context, serial string) (*domain.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if product, ok := s.bySerial[serial]; ok {
		copied := product
		return &copied, nil
	}
	return nil, nil
}

func (s *stubProductRepo) Insert(ctx context.Context, product domain.Product) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.nextID++
	product.ID = s.nextID
	s.inserted = append(s.inserted, product)
	if product.SerialNumber != "" {
		s.bySerial[product.SerialNumber] = product
	}
	return product.ID, nil
}

type stubOrgRepo struct {
	byKey     map[string]domain.Organization
	inserted  []domain.Organization
	nextID    int64
	insertErr error
}

func newStubOrgRepo() *stubOrgRepo {
	return &stubOrgRepo{byKey: make(map[string]domain.Organization)}
}

func (s *stubOrgRepo) FindByNameAndKind(ctx context.Context, name string, kind domain.OrganizationKind) (*domain.Organization, error) {
	if org, ok := s.byKey[name+"|"+string(kind)]; ok {
		copied := org
		return &copied, nil
	}
	return nil, nil
}

func (s *stubOrgRepo) Insert(ctx context.Context, org domain.Organization) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.nextID++
	org.ID = s.nextID
	s.inserted = append(s.inserted, org)
	s.byKey[org.Name+"|"+string(org.Kind)] = org
	return org.ID, nil
}

type stubInterventionRepo struct {
	inserted  []domain.Intervention
	nextID    int64
	insertErr error
}

func (s *stubInterventionRepo) Insert(ctx context.Context, intervention domain.Intervention) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.nextID++
	intervention.ID = s.nextID
	s.inserted = append(s.inserted, intervention)
	return intervention.ID, nil
}

type stubLogRepo struct {
	entries []domain.ImportLogEntry
}

func (s *stubLogRepo) Record(ctx context.Context, entry domain.ImportLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubLogRepo) List(ctx context.Context, fileName string, limit, offset int) ([]domain.ImportLogEntry, error) {
	return append([]domain.ImportLogEntry(nil), s.entries...), nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)
var _ repository.OrganizationRepository = (*stubOrgRepo)(nil)
var _ repository.InterventionRepository = (*stubInterventionRepo)(nil)
var _ repository.ImportLogRepository = (*stubLogRepo)(nil)
