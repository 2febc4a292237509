package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ginona/tucalerta/internal/domain"
)

// Localities covered by the service. The registry is immutable after
// seeding; ids are stable slugs referenced by alerts.
var tucumanLocalities = []domain.Locality{
	// Gran San Miguel de Tucumán
	{ID: "san-miguel-de-tucuman", Name: "San Miguel de Tucumán", Lat: -26.8083, Lng: -65.2176, Province: "tucuman"},
	{ID: "yerba-buena", Name: "Yerba Buena", Lat: -26.8167, Lng: -65.3167, Province: "tucuman"},
	{ID: "tafi-viejo", Name: "Tafí Viejo", Lat: -26.7333, Lng: -65.2667, Province: "tucuman"},
	{ID: "banda-del-rio-sali", Name: "Banda del Río Salí", Lat: -26.8333, Lng: -65.1833, Province: "tucuman"},
	{ID: "las-talitas", Name: "Las Talitas", Lat: -26.7667, Lng: -65.2, Province: "tucuman"},
	{ID: "alderetes", Name: "Alderetes", Lat: -26.8167, Lng: -65.1333, Province: "tucuman"},
	{ID: "el-manantial", Name: "El Manantial", Lat: -26.838, Lng: -65.305, Province: "tucuman"},
	{ID: "san-pablo", Name: "San Pablo", Lat: -26.875, Lng: -65.3, Province: "tucuman"},
	{ID: "cevil-redondo", Name: "Cevil Redondo", Lat: -26.85, Lng: -65.1667, Province: "tucuman"},
	{ID: "lastenia", Name: "Lastenia", Lat: -26.8333, Lng: -65.15, Province: "tucuman"},
	{ID: "delfin-gallo", Name: "Delfín Gallo", Lat: -26.8, Lng: -65.15, Province: "tucuman"},
	{ID: "colombres", Name: "Colombres", Lat: -26.7833, Lng: -65.1167, Province: "tucuman"},
	{ID: "los-pocitos", Name: "Los Pocitos", Lat: -26.75, Lng: -65.2333, Province: "tucuman"},
	{ID: "villa-carmela", Name: "Villa Carmela", Lat: -26.75, Lng: -65.25, Province: "tucuman"},
	{ID: "el-cadillal", Name: "El Cadillal", Lat: -26.6333, Lng: -65.2, Province: "tucuman"},
	{ID: "san-javier", Name: "San Javier", Lat: -26.7833, Lng: -65.3667, Province: "tucuman"},
	{ID: "villa-nougues", Name: "Villa Nougués", Lat: -26.85, Lng: -65.3667, Province: "tucuman"},
	// Lules y alrededores
	{ID: "lules", Name: "Lules", Lat: -26.9333, Lng: -65.3333, Province: "tucuman"},
	{ID: "san-isidro-de-lules", Name: "San Isidro de Lules", Lat: -26.9167, Lng: -65.3, Province: "tucuman"},
	{ID: "la-reduccion", Name: "La Reducción", Lat: -26.95, Lng: -65.3167, Province: "tucuman"},
	// Sur de Tucumán
	{ID: "famailla", Name: "Famaillá", Lat: -27.05, Lng: -65.4, Province: "tucuman"},
	{ID: "monteros", Name: "Monteros", Lat: -27.1667, Lng: -65.5, Province: "tucuman"},
	{ID: "concepcion", Name: "Concepción", Lat: -27.3439, Lng: -65.5897, Province: "tucuman"},
	{ID: "aguilares", Name: "Aguilares", Lat: -27.4333, Lng: -65.6167, Province: "tucuman"},
	{ID: "simoca", Name: "Simoca", Lat: -27.2667, Lng: -65.35, Province: "tucuman"},
	{ID: "juan-bautista-alberdi", Name: "Juan Bautista Alberdi", Lat: -27.5833, Lng: -65.6167, Province: "tucuman"},
	{ID: "la-cocha", Name: "La Cocha", Lat: -27.7667, Lng: -65.5833, Province: "tucuman"},
	{ID: "bella-vista", Name: "Bella Vista", Lat: -27.0333, Lng: -65.3, Province: "tucuman"},
	// Norte y Oeste
	{ID: "tafi-del-valle", Name: "Tafí del Valle", Lat: -26.85, Lng: -65.7167, Province: "tucuman"},
	{ID: "raco", Name: "Raco", Lat: -26.6667, Lng: -65.3833, Province: "tucuman"},
	{ID: "trancas", Name: "Trancas", Lat: -26.2333, Lng: -65.2833, Province: "tucuman"},
	{ID: "san-pedro-de-colalao", Name: "San Pedro de Colalao", Lat: -26.2333, Lng: -65.4833, Province: "tucuman"},
	{ID: "burruyacu", Name: "Burruyacú", Lat: -26.5, Lng: -64.75, Province: "tucuman"},
}

// SeedLocalities upserts the locality registry. Centroids may be
// corrected between releases, so existing rows are updated.
func SeedLocalities(ctx context.Context, pool *pgxpool.Pool) error {
	const query = `
		INSERT INTO localities (id, name, lat, lng, province)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			lat  = EXCLUDED.lat,
			lng  = EXCLUDED.lng
	`

	for _, loc := range tucumanLocalities {
		if _, err := pool.Exec(ctx, query, loc.ID, loc.Name, loc.Lat, loc.Lng, loc.Province); err != nil {
			return err
		}
	}
	return nil
}
