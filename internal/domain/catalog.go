package domain

// DefaultProducts is the starter menu loaded into an empty catalog.
// Prices are in minor units of a two-digit currency.
func DefaultProducts() []Product {
	return []Product{
		{Name: "Nasi Padang Rendang", NameLocalized: "أرز بادانج مع الرندانغ", Category: "Rice", Price: 2800, Active: true},
		{Name: "Nasi Ayam Pop", NameLocalized: "أرز مع دجاج بوب", Category: "Rice", Price: 2500, Active: true},
		{Name: "Gulai Kambing", NameLocalized: "كاري لحم الضأن", Category: "Curry", Price: 3200, Active: true},
		{Name: "Sate Padang", NameLocalized: "ساتيه بادانج", Category: "Grill", Price: 2200, Active: true},
		{Name: "Dendeng Balado", NameLocalized: "لحم مجفف بالفلفل", Category: "Grill", Price: 3000, Active: true},
		{Name: "Teh Talua", NameLocalized: "شاي بالبيض", Category: "Drinks", Price: 900, Active: true},
		{Name: "Es Teh Manis", NameLocalized: "شاي مثلج", Category: "Drinks", Price: 600, Active: true},
	}
}
